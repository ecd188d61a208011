package taskset

import (
	"sync"

	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

// Run hosts one task-set service. Each task reserves its own resources on
// some agent and is launched at most once; the reservations recorded in the
// task records are the run's expected-resource inventory.
//
// Concurrency: Offers arrives on the processor's consumer; Status and
// UnexpectedResources can arrive from the driver's event loop. A single
// mutex serializes them.
type Run struct {
	mutex      sync.Mutex
	spec       *Spec
	stateStore *state.StateStore
	registered bool
}

func NewRun(spec *Spec, stateStore *state.StateStore) *Run {
	return &Run{spec: spec, stateStore: stateStore}
}

func (r *Run) Name() string {
	return r.spec.Name
}

func (r *Run) Mode() run.Mode {
	return run.Active
}

func (r *Run) Registered(reRegistered bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	log.Infof("Service %s notified of registration (reRegistered=%v)", r.spec.Name, reRegistered)
	r.registered = true
}

// Offers launches any not-yet-launched task onto the first remaining offer
// with enough unreserved capacity, one task per offer per pass. Launched
// tasks are recorded before the recommendations are returned, so a crash
// between here and the accept call errs toward cleanup rather than double
// launch.
func (r *Run) Offers(remaining []offer.Offer) run.OfferResponse {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.registered {
		return run.OfferResponse{Result: run.NotReady}
	}

	records, err := r.stateStore.FetchTaskRecords()
	if err != nil {
		log.Errorf("Service %s failed to read task records: %v", r.spec.Name, err)
		return run.OfferResponse{Result: run.NotReady}
	}
	launched := map[string]bool{}
	for _, record := range records {
		launched[record.Name] = true
	}
	// TODO: relaunch tasks in a terminal state when their reservations are
	// re-offered, instead of leaving them down.

	recommendations := []offer.Recommendation{}
	usedOffers := map[offer.OfferID]bool{}
	for _, task := range r.spec.Tasks {
		if launched[task.Name] {
			continue
		}
		for _, o := range remaining {
			if usedOffers[o.ID] || !fits(o, task) {
				continue
			}
			recs, record, err := r.launch(task, o)
			if err != nil {
				log.Errorf("Service %s failed to record launch of %s: %v", r.spec.Name, task.Name, err)
				return run.OfferResponse{Result: run.NotReady, Recommendations: recommendations}
			}
			log.Infof("Service %s launching task %s on agent %s (offer %s)",
				r.spec.Name, record.TaskID, o.AgentID, o.ID)
			recommendations = append(recommendations, recs...)
			usedOffers[o.ID] = true
			break
		}
	}
	return run.OfferResponse{Result: run.Processed, Recommendations: recommendations}
}

// fits reports whether the offer's unreserved capacity covers the task.
func fits(o offer.Offer, task TaskSpec) bool {
	free := map[string]float64{}
	for _, res := range o.Resources {
		if !offer.IsReserved(res) {
			free[res.Name] += res.Value
		}
	}
	return free["cpus"] >= task.Cpus && free["mem"] >= task.Mem && free["disk"] >= task.Disk
}

func (r *Run) launch(task TaskSpec, o offer.Offer) ([]offer.Recommendation, *state.TaskRecord, error) {
	reserved := []offer.Resource{
		r.reservedResource("cpus", task.Cpus),
		r.reservedResource("mem", task.Mem),
	}
	recommendations := []offer.Recommendation{}
	var volume *offer.Resource
	if task.Disk > 0 {
		v := r.reservedResource("disk", task.Disk)
		v.PersistenceID = v.ResourceID
		reserved = append(reserved, v)
		volume = &v
	}
	recommendations = append(recommendations, offer.NewReserveRecommendation(o, reserved))
	if volume != nil {
		recommendations = append(recommendations, offer.NewCreateRecommendation(o, *volume))
	}

	record := &state.TaskRecord{
		Name:      task.Name,
		TaskID:    offer.NewTaskID(r.spec.Name, task.Name, newUUID()),
		AgentID:   o.AgentID,
		State:     "TASK_STAGING",
		Resources: reserved,
	}
	recommendations = append(recommendations, offer.NewLaunchRecommendation(o, offer.TaskInfo{
		TaskID:    record.TaskID,
		Name:      task.Name,
		AgentID:   o.AgentID,
		Resources: reserved,
		Data:      []byte(task.Command),
	}))

	if err := r.stateStore.StoreTaskRecord(record); err != nil {
		return nil, nil, err
	}
	return recommendations, record, nil
}

func (r *Run) reservedResource(name string, value float64) offer.Resource {
	return offer.Resource{
		Name:        name,
		Value:       value,
		Role:        r.spec.Role,
		Principal:   r.spec.Principal,
		ServiceName: r.spec.Name,
		ResourceID:  newUUID(),
	}
}

// UnexpectedResources returns the subset of the presented reservations
// that no task record claims.
func (r *Run) UnexpectedResources(synthetic []offer.Offer) run.UnexpectedResponse {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	records, err := r.stateStore.FetchTaskRecords()
	if err != nil {
		log.Errorf("Service %s failed to read task records for cleanup: %v", r.spec.Name, err)
		return run.UnexpectedResponse{Result: run.CleanupFailed}
	}
	expected := map[string]bool{}
	for _, record := range records {
		for _, res := range record.Resources {
			expected[res.ResourceID] = true
		}
	}

	unexpected := []offer.Offer{}
	for _, o := range synthetic {
		subset := []offer.Resource{}
		for _, res := range o.Resources {
			if !expected[res.ResourceID] {
				subset = append(subset, res)
			}
		}
		if len(subset) > 0 {
			o.Resources = subset
			unexpected = append(unexpected, o)
		}
	}
	return run.UnexpectedResponse{Result: run.CleanupProcessed, Offers: unexpected}
}

// Status records the task's latest state against its record.
func (r *Run) Status(status offer.TaskStatus) run.StatusResult {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	records, err := r.stateStore.FetchTaskRecords()
	if err != nil {
		log.Errorf("Service %s failed to read task records for status: %v", r.spec.Name, err)
		return run.UnknownTask
	}
	for _, record := range records {
		if record.TaskID != status.TaskID {
			continue
		}
		record.State = status.State
		if err := r.stateStore.StoreTaskRecord(record); err != nil {
			log.Errorf("Service %s failed to store status for %s: %v", r.spec.Name, status.TaskID, err)
		}
		return run.StatusProcessed
	}
	log.Infof("Service %s has no record of task %s", r.spec.Name, status.TaskID)
	return run.UnknownTask
}

// ToUninstall flags the state store and hands the reservations over to an
// uninstalling replacement.
func (r *Run) ToUninstall() run.Run {
	return run.NewUninstallRun(r.spec.Name, r.stateStore)
}

func (r *Run) StateStore() *state.StateStore {
	return r.stateStore
}

func newUUID() string {
	// rand.Read never fails per its contract, but keep trying on the
	// absurd path rather than panic mid-launch.
	for {
		if id, err := uuid.NewV4(); err == nil {
			return id.String()
		}
	}
}
