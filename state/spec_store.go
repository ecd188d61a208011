package state

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

const (
	specsRootName    = "Specs"
	specTypePathName = "Type"
	specDataPathName = "Data"

	// The property in each service's namespace mapping the service back to
	// its spec.
	SpecIDProperty = "spec-id"
)

// SpecStore maintains persistent storage of submitted specs. The original
// submission bytes are stored as-is, so improvements to spec parsing are
// inherited by existing runs without resubmission.
//
// Specs are content-addressed: identical (type, data) submissions share a
// single record, and the id doubles as a cheap equality witness.
//
// Layout:
//   Specs/<specId>/Type
//   Specs/<specId>/Data
type SpecStore struct {
	persister Persister
}

func NewSpecStore(persister Persister) *SpecStore {
	return &SpecStore{persister: persister}
}

// A spec recovered from storage, paired with the service that references
// it. One entry per service; services sharing a spec repeat the spec.
type RecoveredSpec struct {
	ServiceName string
	SpecID      string
	Type        string
	Data        []byte
}

// Store writes the spec data (reusing an existing id if present) and points
// the service's namespace at it via the spec-id property. Returns the spec
// id.
func (s *SpecStore) Store(runStateStore *StateStore, data []byte, specType string) (string, error) {
	if data == nil {
		return "", NewError(InvalidArgument, "data cannot be nil")
	}
	if specType == "" {
		return "", NewError(InvalidArgument, "type cannot be empty")
	}

	specID := toSpecID(specType, data)
	typePath := specTypePath(specID)
	dataPath := specDataPath(specID)
	typeBytes := []byte(specType)

	entries, err := s.persister.GetMany([]string{typePath, dataPath})
	if err != nil {
		return "", err
	}
	storedType := entries[typePath]
	storedData := entries[dataPath]
	if storedType == nil && storedData == nil {
		log.Infof("Storing new %d byte %s spec with id %s", len(data), specType, specID)
		if err := s.persister.SetMany(map[string][]byte{
			typePath: typeBytes,
			dataPath: data,
		}); err != nil {
			return "", err
		}
	} else {
		// The spec already exists. Verify the stored bytes exactly match
		// before reusing the record. A mismatch implies, in decreasing
		// likelihood: a bug here, tampered storage, or a sha256 collision.
		log.Infof("Verifying existing %d byte %s spec with id %s", len(data), specType, specID)
		if !bytes.Equal(typeBytes, storedType) || !bytes.Equal(data, storedData) {
			log.Errorf("Mismatch between stored data and submitted data for spec %s", specID)
			log.Error(entryDescription("SpecStore", storedType, storedData))
			log.Error(entryDescription("Submission", typeBytes, data))
			return "", NewError(LogicError,
				"data mismatch between existing data and submitted data for specId %s", specID)
		}
	}

	if err := runStateStore.StoreProperty(SpecIDProperty, []byte(specID)); err != nil {
		return "", err
	}
	return specID, nil
}

// SpecID returns the spec id recorded for the service, or ok=false if none
// was found.
func (s *SpecStore) SpecID(runStateStore *StateStore) (string, bool, error) {
	data, err := runStateStore.FetchProperty(SpecIDProperty)
	if err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// RecoverSpecs enumerates the service namespaces and returns each service
// paired with its stored spec. Every problem found (missing spec-id,
// missing Type or Data) is logged and accumulated; if anything was wrong
// the whole call fails with the aggregate after logging everything, so the
// operator sees the full damage in one pass.
//
// Unused specs are not pruned here; a leaked spec is tolerated.
func (s *SpecStore) RecoverSpecs() ([]RecoveredSpec, error) {
	namespaces, err := ServiceNamespaces(s.persister)
	if err != nil {
		return nil, err
	}

	var malformed *multierror.Error
	serviceToSpecID := map[string]string{}
	for _, namespace := range namespaces {
		specID, ok, err := s.SpecID(NewStateStore(s.persister, namespace))
		if err != nil || !ok {
			// The spec id is written before the service launches and kept
			// until the namespace is wiped, so it should always be here.
			log.Errorf("Failed to retrieve expected property=%s for service=%s. Corrupt service data? (%v)",
				SpecIDProperty, namespace, err)
			malformed = multierror.Append(malformed, NewError(LogicError,
				"service %s has an invalid or missing spec id", namespace))
			continue
		}
		serviceToSpecID[namespace] = specID
	}
	log.Infof("Found %d service(s): %v", len(serviceToSpecID), serviceToSpecID)
	if err := malformed.ErrorOrNil(); err != nil {
		return nil, WrapError(LogicError, err,
			"one or more services have invalid or missing spec id properties")
	}

	// Batch-read the distinct set of (Type, Data) records.
	paths := []string{}
	seen := map[string]bool{}
	for _, specID := range serviceToSpecID {
		if !seen[specID] {
			seen[specID] = true
			paths = append(paths, specTypePath(specID), specDataPath(specID))
		}
	}
	entries, err := s.persister.GetMany(paths)
	if err != nil {
		return nil, err
	}

	recovered := []RecoveredSpec{}
	for _, namespace := range namespaces {
		specID := serviceToSpecID[namespace]
		typeBytes := entries[specTypePath(specID)]
		dataBytes := entries[specDataPath(specID)]
		if typeBytes == nil || dataBytes == nil {
			log.Errorf("Missing spec data or type for spec id '%s' used by service %s", specID, namespace)
			malformed = multierror.Append(malformed, NewError(LogicError,
				"spec %s referenced by service %s is missing its Type or Data", specID, namespace))
			continue
		}
		recovered = append(recovered, RecoveredSpec{
			ServiceName: namespace,
			SpecID:      specID,
			Type:        string(typeBytes),
			Data:        dataBytes,
		})
	}
	if err := malformed.ErrorOrNil(); err != nil {
		return nil, WrapError(LogicError, err, "one or more expected specs are malformed or missing")
	}
	return recovered, nil
}

func entryDescription(label string, typeBytes, data []byte) string {
	return fmt.Sprintf("%s: type (%d bytes): '%s', data (%d bytes): %q",
		label, len(typeBytes), string(typeBytes), len(data), string(data))
}

func specTypePath(specID string) string {
	return JoinPath(specsRootName, specID, specTypePathName)
}

func specDataPath(specID string) string {
	return JoinPath(specsRootName, specID, specDataPathName)
}

// toSpecID returns <type>-<hex(sha256(data))>, uniquely identifying specs
// with identical type + content.
func toSpecID(specType string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s-%s", specType, hex.EncodeToString(sum[:]))
}
