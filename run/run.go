// Package run defines the capability contract a hosted service must
// satisfy, the registry of active runs, and the lifecycle manager that
// admits, uninstall-swaps, and removes them.
package run

import (
	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/state"
)

// Result of an Offers call.
type Result int

const (
	// The run looked at the offers; unused ones can be long-declined.
	Processed Result = iota

	// The run wasn't ready; unused offers should be short-declined so it
	// gets another chance shortly.
	NotReady

	// The run has completed its work and can be switched to uninstall.
	Finished

	// The run has completed uninstall and can be removed.
	Uninstalled
)

func (r Result) String() string {
	switch r {
	case Processed:
		return "PROCESSED"
	case NotReady:
		return "NOT_READY"
	case Finished:
		return "FINISHED"
	case Uninstalled:
		return "UNINSTALLED"
	}
	return "UNKNOWN"
}

type OfferResponse struct {
	Result          Result
	Recommendations []offer.Recommendation
}

// Result of an UnexpectedResources call.
type CleanupResult int

const (
	CleanupProcessed CleanupResult = iota

	// The run couldn't evaluate its resources. The identified subset is
	// still released, but the caller plays it safe by short-declining.
	CleanupFailed
)

type UnexpectedResponse struct {
	Result CleanupResult

	// Per-offer subsets (as synthetic offers) the run agrees should be
	// released.
	Offers []offer.Offer
}

// Result of a Status call.
type StatusResult int

const (
	StatusProcessed StatusResult = iota
	UnknownTask
)

// Mode of a run; a run transitions Active -> Uninstalling at most once.
type Mode int

const (
	Active Mode = iota
	Uninstalling
)

// Run is the narrow capability a hosted service exposes to the core. The
// core makes no assumption about what the run internally does; the variants
// in this repository are the active task-set run and the uninstalling run.
type Run interface {
	// Name returns the run's unique name. Never contains '/'.
	Name() string

	Mode() Mode

	// Registered is invoked once the framework has registered, or
	// immediately on admission if registration already happened.
	Registered(reRegistered bool)

	// Offers presents the remaining offers in this pass. Consumed offers
	// are reported through the returned recommendations.
	Offers(remaining []offer.Offer) OfferResponse

	// UnexpectedResources asks which of the presented resources (always
	// the run's own) the run no longer expects. Offers are synthetic,
	// containing only resources labeled for this run.
	UnexpectedResources(synthetic []offer.Offer) UnexpectedResponse

	// Status presents a task status update routed to this run.
	Status(status offer.TaskStatus) StatusResult

	// ToUninstall returns the uninstalling replacement for this run.
	// Idempotent: an uninstalling run returns itself.
	ToUninstall() Run

	// StateStore exposes the run's persisted namespace for admission,
	// recovery and HTTP introspection.
	StateStore() *state.StateStore
}
