package run

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/state"
)

// UninstallRun is the uninstalling variant of a run. It owns no tasks
// anymore; its job is to hand back every reservation still recorded in its
// state store, then wipe the namespace and report Uninstalled.
//
// Construction flags the state store with an uninstall bit (idempotent), so
// a restarted scheduler reconstructs the run directly in this mode.
type UninstallRun struct {
	name       string
	stateStore *state.StateStore

	mutex sync.Mutex
	// The first offer pass only prepares the teardown; callers
	// short-decline it and come back.
	prepared bool
}

func NewUninstallRun(name string, stateStore *state.StateStore) *UninstallRun {
	if !stateStore.IsUninstalling() {
		if err := stateStore.SetUninstalling(); err != nil {
			// The bit only speeds up recovery; uninstall itself proceeds.
			log.Errorf("Failed to flag %s as uninstalling: %v", name, err)
		}
	}
	return &UninstallRun{name: name, stateStore: stateStore}
}

func (u *UninstallRun) Name() string {
	return u.name
}

func (u *UninstallRun) Mode() Mode {
	return Uninstalling
}

func (u *UninstallRun) Registered(reRegistered bool) {
	log.Infof("Uninstalling service %s notified of registration (reRegistered=%v)", u.name, reRegistered)
}

// Offers never consumes anything. Once the reservation inventory is empty
// the namespace is wiped and the run reports Uninstalled so the manager can
// remove it.
func (u *UninstallRun) Offers(remaining []offer.Offer) OfferResponse {
	u.mutex.Lock()
	if !u.prepared {
		u.prepared = true
		u.mutex.Unlock()
		log.Infof("Uninstalling service %s preparing teardown", u.name)
		return OfferResponse{Result: NotReady}
	}
	u.mutex.Unlock()

	records, err := u.stateStore.FetchTaskRecords()
	if err != nil {
		log.Errorf("Failed to read task records for uninstalling service %s: %v", u.name, err)
		return OfferResponse{Result: NotReady}
	}
	outstanding := 0
	for _, record := range records {
		outstanding += len(record.Resources)
	}
	if outstanding > 0 {
		log.Infof("Uninstalling service %s still waiting on %d reserved resource(s)", u.name, outstanding)
		return OfferResponse{Result: Processed}
	}

	if err := u.stateStore.Wipe(); err != nil {
		log.Errorf("Failed to wipe state for uninstalled service %s: %v", u.name, err)
		return OfferResponse{Result: NotReady}
	}
	return OfferResponse{Result: Uninstalled}
}

// UnexpectedResources reports everything as unexpected: an uninstalling run
// wants all of its reservations returned. The released resources are pruned
// from the task records here; the release operations for them are already
// being submitted within this pass.
func (u *UninstallRun) UnexpectedResources(synthetic []offer.Offer) UnexpectedResponse {
	released := map[string]bool{}
	for _, o := range synthetic {
		for _, id := range offer.ResourceIDs(o.Resources) {
			released[id] = true
		}
	}
	if err := u.pruneReleased(released); err != nil {
		log.Errorf("Failed to record released resources for %s: %v", u.name, err)
		return UnexpectedResponse{Result: CleanupFailed, Offers: synthetic}
	}
	return UnexpectedResponse{Result: CleanupProcessed, Offers: synthetic}
}

func (u *UninstallRun) pruneReleased(released map[string]bool) error {
	if len(released) == 0 {
		return nil
	}
	records, err := u.stateStore.FetchTaskRecords()
	if err != nil {
		return err
	}
	for _, record := range records {
		keep := []offer.Resource{}
		for _, r := range record.Resources {
			if !released[r.ResourceID] {
				keep = append(keep, r)
			}
		}
		if len(keep) == len(record.Resources) {
			continue
		}
		record.Resources = keep
		if len(keep) == 0 {
			if err := u.stateStore.DeleteTaskRecord(record.Name); err != nil {
				return err
			}
			continue
		}
		if err := u.stateStore.StoreTaskRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// Status updates for an uninstalling run's remaining tasks carry no work;
// they are acknowledged and dropped.
func (u *UninstallRun) Status(status offer.TaskStatus) StatusResult {
	log.Infof("Uninstalling service %s ignoring status for %s (%s)", u.name, status.TaskID, status.State)
	return StatusProcessed
}

func (u *UninstallRun) ToUninstall() Run {
	return u
}

func (u *UninstallRun) StateStore() *state.StateStore {
	return u.stateStore
}
