package framework

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/common/errors"
	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/run"
)

// Scheduler receives the resource manager's callbacks. There is exactly one
// per scheduler process; events are forwarded to the mux (via the offer
// processor for offers, directly for statuses).
type Scheduler struct {
	store     *Store
	client    EventClient
	processor *OfferProcessor

	// The resource manager may deliver registered() more than once in a
	// process lifetime (master re-election). Initialization must only
	// happen the first time, or the offer pipeline would wedge.
	registerStarted int32

	// Offers are declined until the admin API is up: launching tasks
	// typically requires it for config artifacts.
	readyToAcceptOffers int32
}

func NewScheduler(store *Store, client EventClient, processor *OfferProcessor) *Scheduler {
	return &Scheduler{store: store, client: client, processor: processor}
}

// SetReadyToAcceptOffers opens the offer path once the admin API server has
// started.
func (s *Scheduler) SetReadyToAcceptOffers() *Scheduler {
	atomic.StoreInt32(&s.readyToAcceptOffers, 1)
	return s
}

func (s *Scheduler) Registered(frameworkID string) {
	if !atomic.CompareAndSwapInt32(&s.registerStarted, 0, 1) {
		// Master re-election: the driver re-subscribed under the same id.
		log.Info("Already registered, treating as re-registration")
		s.Reregistered()
		return
	}

	log.Infof("Registered framework with frameworkId: %s", frameworkID)
	if err := s.store.StoreFrameworkID(frameworkID); err != nil {
		log.Errorf("Unable to store registered framework ID '%s'", frameworkID)
		HardExitError(errors.NewError(err, errors.RegistrationFailureExitCode))
	}

	s.client.Registered(false)
	s.processor.Start()
}

func (s *Scheduler) Reregistered() {
	log.Info("Re-registered with master")
	s.client.Registered(true)
}

func (s *Scheduler) ResourceOffers(offers []offer.Offer) {
	if atomic.LoadInt32(&s.readyToAcceptOffers) == 0 {
		log.Infof("Declining %d offer(s): Waiting for API server to start.", len(offers))
		s.processor.DeclineShort(offers)
		return
	}
	s.processor.Enqueue(offers)
}

func (s *Scheduler) StatusUpdate(status offer.TaskStatus) {
	log.Infof("Received status update for taskId=%s state=%s message=%q",
		status.TaskID, status.State, status.Message)
	if s.client.HandleStatus(status) == run.UnknownTask {
		log.Warnf("Status update for unknown task: %s", status.TaskID)
	}
}

func (s *Scheduler) OfferRescinded(offerID offer.OfferID) {
	log.Infof("Rescinding offer: %s", offerID)
	s.processor.Dequeue(offerID)
}

func (s *Scheduler) FrameworkMessage(executorID string, agentID offer.AgentID, data []byte) {
	log.Errorf("Received unsupported %d byte framework message from executor %s on agent %s",
		len(data), executorID, agentID)
}

func (s *Scheduler) Disconnected() {
	log.Error("Disconnected from master, shutting down.")
	HardExit(errors.DisconnectedExitCode)
}

func (s *Scheduler) AgentLost(agentID offer.AgentID) {
	log.Warnf("Agent lost: %s", agentID)
}

func (s *Scheduler) ExecutorLost(executorID string, agentID offer.AgentID, status int) {
	log.Warnf("Lost executor: %s on agent: %s (%d)", executorID, agentID, status)
}

func (s *Scheduler) Error(message string) {
	log.Errorf("Driver returned an error, shutting down: %s", message)
	HardExit(errors.OfferProcessingExitCode)
}
