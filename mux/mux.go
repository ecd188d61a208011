// Package mux routes resource-manager events to the hosted runs: offers
// are fanned out in admission order with a shrinking remainder, residual
// reservations are reclaimed through the cleanup protocol, and status
// updates are routed to the owning run.
package mux

import (
	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/generator"
	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

// UninstallCallback is invoked when a run has completed its uninstall.
// After it fires, re-admitting the run's name launches a new instance from
// scratch. Never invoked while registry locks are held.
type UninstallCallback func(runName string)

// Outcome of one offer pass.
type Outcome struct {
	// Processed: all runs evaluated their offers; long-decline the rest.
	// NotReady: some run (or the whole mux) wasn't ready; short-decline.
	// Uninstalled: the last run is gone and the framework itself is being
	// uninstalled; the caller tears down and then invokes Unregistered.
	Result run.Result

	// Run recommendations plus cleanup recommendations, in submission
	// order.
	Recommendations []offer.Recommendation

	// Offers untouched by any recommendation, to be declined.
	Unused []offer.Offer

	// A run failed to evaluate its unexpected resources; short-decline
	// even if everything else processed.
	CleanupFailed bool
}

// Mux multiplexes one framework's event stream among hosted runs.
type Mux struct {
	specStore     *state.SpecStore
	manager       *run.Manager
	registry      *generator.Registry
	uninstallPlan *run.UninstallPlan
	callback      UninstallCallback
}

// NewMux returns a Mux. A non-nil uninstallPlan puts the whole framework in
// uninstall mode: once the last run is removed, offer passes report
// Uninstalled so the caller can tear down.
func NewMux(
	specStore *state.SpecStore,
	manager *run.Manager,
	registry *generator.Registry,
	uninstallPlan *run.UninstallPlan,
	callback UninstallCallback,
) *Mux {
	return &Mux{
		specStore:     specStore,
		manager:       manager,
		registry:      registry,
		uninstallPlan: uninstallPlan,
		callback:      callback,
	}
}

// Generators returns the installed run generators, for the HTTP layer.
func (m *Mux) Generators() *generator.Registry {
	return m.registry
}

// UninstallPlan returns the framework uninstall plan, or nil when not
// uninstalling.
func (m *Mux) UninstallPlan() *run.UninstallPlan {
	return m.uninstallPlan
}

// Registered forwards (re-)registration to the runs.
func (m *Mux) Registered(reRegistered bool) {
	m.manager.Registered(reRegistered)
}

// Unregistered completes the framework uninstall plan after the resource
// manager confirms deregistration.
func (m *Mux) Unregistered() {
	if m.uninstallPlan == nil {
		// Only reachable after an Uninstalled outcome, which requires the plan.
		log.Error("Unregistered called while not uninstalling")
		return
	}
	m.uninstallPlan.Deregister.SetComplete()
}

// HandleOffers fans the batch out to every run in admission order, then
// reclaims whatever reservations remain on the leftover offers. Offers
// consumed by one run are not shown to the runs after it. An empty batch
// still performs the full fan-out so runs can make progress.
//
// Must not be invoked concurrently with itself; the offer processor's
// single consumer is the only caller.
func (m *Mux) HandleOffers(offers []offer.Offer) Outcome {
	if m.uninstallPlan != nil {
		m.uninstallPlan.Deregister.Start()
	}

	remaining := offers
	recommendations := []offer.Recommendation{}
	finished := []string{}
	uninstalled := []string{}
	anyNotReady := false

	runs := m.manager.LockAndGetRuns()
	log.Infof("Sending %d offer(s) to %d service(s)", len(offers), len(runs))
	noClients := len(runs) == 0
	for _, r := range runs {
		resp := r.Offers(remaining)
		if len(remaining) > 0 && len(resp.Recommendations) > 0 {
			// Some offers were consumed; the next run sees what remains.
			remaining = offer.FilterOutAccepted(remaining, resp.Recommendations)
		}
		recommendations = append(recommendations, resp.Recommendations...)
		log.Infof("  %s offer result: %s [%d rec(s)], %d offer(s) remaining",
			r.Name(), resp.Result, len(resp.Recommendations), len(remaining))

		switch resp.Result {
		case run.Finished:
			finished = append(finished, r.Name())
		case run.Uninstalled:
			uninstalled = append(uninstalled, r.Name())
		case run.NotReady:
			anyNotReady = true
		case run.Processed:
			// Keep going.
		}
	}
	m.manager.UnlockRuns()

	if len(finished) > 0 {
		log.Infof("Starting uninstall for %d service(s): %v", len(finished), finished)
		// Takes the exclusive lock internally, so we must be unlocked here.
		m.manager.StartUninstall(finished)
	}

	if len(uninstalled) > 0 {
		if m.manager.Remove(uninstalled) <= 0 {
			noClients = true
		}
		// Callbacks run outside any lock: a callback may re-enter the
		// manager, and holding a lock here would deadlock it.
		for _, name := range uninstalled {
			m.callback(name)
		}
	}

	cleanupRecs, cleanupFailed := m.cleanResiduals(remaining)
	recommendations = append(recommendations, cleanupRecs...)

	outcome := Outcome{
		Recommendations: recommendations,
		Unused:          offer.FilterOutAccepted(offers, recommendations),
		CleanupFailed:   cleanupFailed,
	}
	switch {
	case noClients && m.uninstallPlan != nil:
		// The last run was cleaned up and the framework itself is being
		// uninstalled; the caller finishes teardown and invokes
		// Unregistered once the resource manager confirms.
		outcome.Result = run.Uninstalled
	case noClients || anyNotReady:
		outcome.Result = run.NotReady
	default:
		outcome.Result = run.Processed
	}
	return outcome
}

// cleanResiduals maps the reserved resources on leftover offers to the
// runs that own them, asks each which it no longer expects, and emits the
// ordered release operations for those plus anything unowned.
//
// Resources are unexpected for any of three reasons: the reservation has
// no service label (malformed), the label matches no hosted run (orphan),
// or the owning run reported it unexpected.
func (m *Mux) cleanResiduals(residual []offer.Offer) ([]offer.Recommendation, bool) {
	inventory := offer.Classify(residual)

	toRelease := []offer.Offer{}
	for _, entry := range inventory.Malformed {
		toRelease = append(toRelease, entry.Synthetic())
	}

	anyFailed := false
	for _, serviceName := range inventory.ServiceNames() {
		entries := inventory.ByService[serviceName]
		synthetic := make([]offer.Offer, 0, len(entries))
		for _, entry := range entries {
			synthetic = append(synthetic, entry.Synthetic())
		}

		owner, present := m.manager.Get(serviceName)
		if !present {
			log.Infof("  %s cleanup result: unknown service, all resources unexpected", serviceName)
			toRelease = append(toRelease, synthetic...)
			continue
		}

		// One call per service; the run only sees its own resources.
		resp := owner.UnexpectedResources(synthetic)
		log.Infof("  %s cleanup result: %d unexpected resource offer(s)", serviceName, len(resp.Offers))
		if resp.Result == run.CleanupFailed {
			// The identified subset is still released below; the failure
			// only forces a short decline so the run gets another look
			// soon. (Arguably the subset shouldn't be released at all on
			// failure; this preserves the long-observed behaviour.)
			log.Warnf("  %s failed to evaluate unexpected resources", serviceName)
			anyFailed = true
		}
		toRelease = append(toRelease, resp.Offers...)
	}

	// An empty expected-set releases everything in toRelease, with every
	// DESTROY ahead of every UNRESERVE.
	return offer.NewCleaner(nil).Evaluate(toRelease), anyFailed
}

// HandleStatus routes a task status update to the run that owns the task,
// as labeled in the task id.
func (m *Mux) HandleStatus(status offer.TaskStatus) run.StatusResult {
	serviceName, ok := offer.ServiceNameFromTaskID(status.TaskID)
	if !ok {
		log.Errorf("Received task status with malformed id '%s', unable to route to service", status.TaskID)
		return run.UnknownTask
	}
	owner, present := m.manager.Get(serviceName)
	if !present {
		log.Infof("Received task status for unknown service %s: %s=%s", serviceName, status.TaskID, status.State)
		return run.UnknownTask
	}
	log.Infof("Received task status for service %s: %s=%s", serviceName, status.TaskID, status.State)
	return owner.Status(status)
}
