package state

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const lockFileName = "harbor.lock"

// FilePersister stores values as files beneath a root directory. Not
// durable beyond machine failure. An exclusive lock file under the root
// guards against two scheduler processes sharing one state root.
type FilePersister struct {
	root string
}

// MakeFilePersister creates the root directory if needed and takes the
// exclusive lock. A held lock means another scheduler owns this root; the
// caller is expected to exit with the lock-unavailable code rather than
// proceed.
func MakeFilePersister(root string) (*FilePersister, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "creating state root %s", root)
	}

	lockPath := filepath.Join(root, lockFileName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, NewError(StorageFailure, "state root %s is locked by another process", root)
		}
		return nil, errors.Wrapf(err, "acquiring lock at %s", lockPath)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return &FilePersister{root: root}, nil
}

// ReleaseLock gives up the root for another process. Only used on clean
// shutdown; a crashed process leaves the lock for the operator to clear.
func (p *FilePersister) ReleaseLock() {
	if err := os.Remove(filepath.Join(p.root, lockFileName)); err != nil {
		log.Warnf("Failed to release state lock: %v", err)
	}
}

func (p *FilePersister) filePath(path string) string {
	return filepath.Join(p.root, filepath.FromSlash(path))
}

func (p *FilePersister) Get(path string) ([]byte, error) {
	data, err := ioutil.ReadFile(p.filePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewError(NotFound, "no data at %s", path)
		}
		return nil, WrapError(StorageFailure, err, "reading %s", path)
	}
	return data, nil
}

func (p *FilePersister) GetMany(paths []string) (map[string][]byte, error) {
	found := map[string][]byte{}
	for _, path := range paths {
		data, err := p.Get(path)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		found[path] = data
	}
	return found, nil
}

// Writes go through a short retry to paper over transient filesystem
// hiccups (the storage retry policy for TRANSIENT errors).
func (p *FilePersister) Set(path string, data []byte) error {
	op := func() error {
		full := p.filePath(path)
		if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
			return err
		}
		tmp := full + ".tmp"
		if err := ioutil.WriteFile(tmp, data, 0644); err != nil {
			return err
		}
		return os.Rename(tmp, full)
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		return WrapError(StorageFailure, err, "writing %s", path)
	}
	return nil
}

func (p *FilePersister) SetMany(entries map[string][]byte) error {
	for path, data := range entries {
		if err := p.Set(path, data); err != nil {
			return err
		}
	}
	return nil
}

func (p *FilePersister) Delete(path string) error {
	if err := os.RemoveAll(p.filePath(path)); err != nil {
		return WrapError(StorageFailure, err, "deleting %s", path)
	}
	return nil
}

func (p *FilePersister) Children(path string) ([]string, error) {
	entries, err := ioutil.ReadDir(p.filePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, WrapError(StorageFailure, err, "listing %s", path)
	}
	children := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if path == "" && name == lockFileName {
			continue
		}
		children = append(children, name)
	}
	sort.Strings(children)
	return children, nil
}
