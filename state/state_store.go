package state

import (
	log "github.com/sirupsen/logrus"
)

const (
	servicesRootName    = "Services"
	propertiesPathName  = "Properties"
	tasksPathName       = "Tasks"
	frameworkIDPathName = "FrameworkID"

	// Property flagging a service as uninstalling; present from the moment
	// uninstall begins until the namespace is wiped, so a restarted
	// scheduler reconstructs the run directly in uninstall mode.
	UninstallingProperty = "uninstalling"
)

// StateStore is a view of one service's namespace within the Persister:
// properties, task records, and the framework id. The empty namespace is
// the framework's own (root) namespace.
type StateStore struct {
	persister Persister
	namespace string
}

func NewStateStore(persister Persister, namespace string) *StateStore {
	return &StateStore{persister: persister, namespace: namespace}
}

func (s *StateStore) Namespace() string {
	return s.namespace
}

func (s *StateStore) prefix(elems ...string) string {
	if s.namespace == "" {
		return JoinPath(elems...)
	}
	return JoinPath(append([]string{servicesRootName, s.namespace}, elems...)...)
}

func (s *StateStore) StoreProperty(name string, data []byte) error {
	return s.persister.Set(s.prefix(propertiesPathName, name), data)
}

func (s *StateStore) FetchProperty(name string) ([]byte, error) {
	return s.persister.Get(s.prefix(propertiesPathName, name))
}

func (s *StateStore) DeleteProperty(name string) error {
	return s.persister.Delete(s.prefix(propertiesPathName, name))
}

func (s *StateStore) PropertyNames() ([]string, error) {
	return s.persister.Children(s.prefix(propertiesPathName))
}

func (s *StateStore) StoreFrameworkID(id string) error {
	return s.persister.Set(s.prefix(frameworkIDPathName), []byte(id))
}

func (s *StateStore) FetchFrameworkID() (string, error) {
	data, err := s.persister.Get(s.prefix(frameworkIDPathName))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *StateStore) ClearFrameworkID() error {
	return s.persister.Delete(s.prefix(frameworkIDPathName))
}

func (s *StateStore) StoreTaskRecord(record *TaskRecord) error {
	data, err := SerializeTaskRecord(record)
	if err != nil {
		return err
	}
	return s.persister.Set(s.prefix(tasksPathName, record.Name), data)
}

func (s *StateStore) FetchTaskRecords() ([]*TaskRecord, error) {
	names, err := s.persister.Children(s.prefix(tasksPathName))
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, s.prefix(tasksPathName, name))
	}
	entries, err := s.persister.GetMany(paths)
	if err != nil {
		return nil, err
	}
	records := []*TaskRecord{}
	for _, path := range paths {
		data, ok := entries[path]
		if !ok {
			// Deleted between the listing and the read; skip.
			continue
		}
		record, err := DeserializeTaskRecord(data)
		if err != nil {
			return nil, WrapError(LogicError, err, "corrupt task record at %s", path)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *StateStore) DeleteTaskRecord(taskName string) error {
	return s.persister.Delete(s.prefix(tasksPathName, taskName))
}

func (s *StateStore) SetUninstalling() error {
	return s.StoreProperty(UninstallingProperty, []byte("true"))
}

func (s *StateStore) IsUninstalling() bool {
	_, err := s.FetchProperty(UninstallingProperty)
	return err == nil
}

// Wipe removes the service's entire namespace. The final step of
// uninstall; after this the service can be resubmitted from scratch.
// The root namespace is never wiped wholesale; the service and spec
// subtrees live beside its well-known paths.
func (s *StateStore) Wipe() error {
	if s.namespace == "" {
		return NewError(LogicError, "refusing to wipe the root namespace")
	}
	log.Infof("Wiping state namespace for service %q", s.namespace)
	return s.persister.Delete(s.prefix())
}

// ServiceNamespaces enumerates the service namespaces present in the
// persister.
func ServiceNamespaces(persister Persister) ([]string, error) {
	return persister.Children(servicesRootName)
}
