package run

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Manager is the lifecycle façade over the ActiveRunSet: admission,
// uninstall conversion, and removal.
//
// UNINSTALL FLOW:
//  1. StartUninstall("foo") converts the run to its uninstalling variant
//     via ToUninstall(), which flags the run's state store with an
//     uninstall bit.
//  2. The uninstalling run releases its reservations over subsequent offer
//     passes and eventually answers Uninstalled.
//  3. If the scheduler restarts mid-uninstall, recovery finds the
//     uninstall bit and reconstructs the run directly as the uninstalling
//     variant, so progress resumes.
//  4. Once Uninstalled is observed, Remove() drops the run and the
//     uninstall callback fires. Re-admitting the name afterwards launches
//     a fresh instance from scratch.
type Manager struct {
	set *ActiveRunSet

	// Whether the framework-level registration callback has fired. Guarded
	// by the set's write lock so admission and registration replay can't
	// race.
	hasRegistered bool
}

func NewManager(set *ActiveRunSet) *Manager {
	return &Manager{set: set}
}

// Put admits a run. Fails if the name is already present. If registration
// already happened, the run's Registered(false) is invoked immediately so
// it can initialize.
func (m *Manager) Put(r Run) error {
	m.set.lockRW()
	defer m.set.unlockRW()
	log.Infof("Adding service: %s (now %d services)", r.Name(), m.set.size()+1)
	if !m.set.put(r) {
		return fmt.Errorf("service named '%s' is already present", r.Name())
	}
	if m.hasRegistered {
		r.Registered(false)
	}
	return nil
}

// Get returns the named run, if present.
func (m *Manager) Get(name string) (Run, bool) {
	return m.set.Get(name)
}

// Names returns all run names, sorted.
func (m *Manager) Names() []string {
	return m.set.Names()
}

// StartUninstall converts the named runs to their uninstalling variants.
// Unknown names and runs already uninstalling are logged and skipped.
func (m *Manager) StartUninstall(names []string) {
	m.set.lockRW()
	defer m.set.unlockRW()
	log.Infof("Marking services as uninstalling: %v (out of %d services)", names, m.set.size())
	for _, name := range names {
		current, present := m.set.runs[name]
		if !present {
			log.Warnf("Service '%s' does not exist, cannot trigger uninstall", name)
			continue
		}
		if current.Mode() == Uninstalling {
			log.Warnf("Service '%s' is already uninstalling, leaving as-is", name)
			continue
		}
		replacement := current.ToUninstall()
		if m.hasRegistered {
			replacement.Registered(false)
		}
		m.set.replace(name, replacement)
	}
}

// Remove drops the named runs after uninstall has completed. Unknown names
// are ignored. Returns the number of runs still present.
func (m *Manager) Remove(names []string) int {
	m.set.lockRW()
	defer m.set.unlockRW()
	log.Infof("Removing %d uninstalled service(s): %v (from %d total)", len(names), names, m.set.size())
	for _, name := range names {
		m.set.remove(name)
	}
	return m.set.size()
}

// Registered notifies every run of (re-)registration. Runs admitted later
// get the callback replayed on admission.
func (m *Manager) Registered(reRegistered bool) {
	m.set.lockRW()
	defer m.set.unlockRW()
	m.hasRegistered = true
	runs := m.set.all()
	log.Infof("Notifying %d services of %s", len(runs),
		map[bool]string{true: "re-registration", false: "initial registration"}[reRegistered])
	for _, r := range runs {
		r.Registered(reRegistered)
	}
}

// LockAndGetRuns takes a shared lock and returns the runs in admission
// order. UnlockRuns must be called afterwards.
func (m *Manager) LockAndGetRuns() []Run {
	return m.set.LockAndSnapshot()
}

func (m *Manager) UnlockRuns() {
	m.set.Unlock()
}
