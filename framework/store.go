package framework

import (
	"github.com/twitter/harbor/state"
)

// Store persists framework-level registration state in the root namespace.
type Store struct {
	stateStore *state.StateStore
}

func NewStore(persister state.Persister) *Store {
	return &Store{stateStore: state.NewStateStore(persister, "")}
}

// FetchFrameworkID returns the framework id from a previous registration,
// if any. Re-registrations must present it back to the resource manager.
func (s *Store) FetchFrameworkID() (string, bool, error) {
	id, err := s.stateStore.FetchFrameworkID()
	if err != nil {
		if state.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

func (s *Store) StoreFrameworkID(id string) error {
	return s.stateStore.StoreFrameworkID(id)
}

// ClearFrameworkID forgets the registration; done after a completed
// framework uninstall so a future launch starts fresh.
func (s *Store) ClearFrameworkID() error {
	return s.stateStore.ClearFrameworkID()
}
