package framework

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/common/errors"
	"github.com/twitter/harbor/common/stats"
	"github.com/twitter/harbor/mux"
	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/queue"
	"github.com/twitter/harbor/run"
)

// EventClient is the surface the processor drives; the mux implements it.
type EventClient interface {
	Registered(reRegistered bool)
	Unregistered()
	HandleOffers(offers []offer.Offer) mux.Outcome
	HandleStatus(status offer.TaskStatus) run.StatusResult
}

// OfferProcessor owns the offer path: offers are enqueued from the driver's
// event thread and drained by a single consumer, which is the only caller
// of the mux's HandleOffers. No two HandleOffers executions ever overlap.
type OfferProcessor struct {
	client   EventClient
	driver   offer.Driver
	accepter *offer.Accepter
	queue    *queue.OfferQueue
	stat     stats.StatsReceiver

	// Offer processing idles until registration completes.
	initialized int32

	// Offers which have been enqueued but not yet acted upon. Guarded by
	// inProgressMutex, which is never held across a driver call.
	inProgressMutex  sync.Mutex
	offersInProgress map[offer.OfferID]bool

	// Invoked once when a framework-wide uninstall has finished cleaning
	// up the last run. Tears down the driver connection.
	teardown func()

	// Single-threaded mode for tests: Enqueue processes inline on the
	// caller instead of the consumer.
	multithreaded bool
}

func NewOfferProcessor(
	client EventClient,
	driver offer.Driver,
	queueCapacity int,
	stat stats.StatsReceiver,
) *OfferProcessor {
	return &OfferProcessor{
		client:           client,
		driver:           driver,
		accepter:         offer.NewAccepter(driver, stat.Scope("accepter")),
		queue:            queue.NewOfferQueue(queueCapacity),
		stat:             stat,
		offersInProgress: map[offer.OfferID]bool{},
		multithreaded:    true,
	}
}

// DisableThreading forces synchronous processing for tests. Must be called
// before Start.
func (p *OfferProcessor) DisableThreading() *OfferProcessor {
	p.multithreaded = false
	return p
}

// SetTeardown installs the framework teardown hook invoked when an
// uninstalling framework has cleaned up its last run.
func (p *OfferProcessor) SetTeardown(teardown func()) {
	p.teardown = teardown
}

// Start spawns the consumer and marks the processor initialized.
func (p *OfferProcessor) Start() {
	if p.multithreaded {
		go func() {
			for {
				if !p.processQueuedOffers() {
					log.Info("Offer queue closed, exiting consumer")
					return
				}
			}
		}()
	}
	atomic.StoreInt32(&p.initialized, 1)
}

// Stop closes the queue; the consumer drains and exits.
func (p *OfferProcessor) Stop() {
	p.queue.Close()
}

// Enqueue admits offers to the queue. An offer the queue refuses is
// short-declined immediately and only then dropped from the in-progress
// set, so AwaitProcessed can't observe it as processed before the decline
// went out.
func (p *OfferProcessor) Enqueue(offers []offer.Offer) {
	p.inProgressMutex.Lock()
	for _, o := range offers {
		p.offersInProgress[o.ID] = true
	}
	log.Infof("Enqueuing %d offer(s). Offers in progress: %d", len(offers), len(p.offersInProgress))
	p.inProgressMutex.Unlock()

	for _, o := range offers {
		if p.queue.Offer(o) {
			continue
		}
		log.Warnf("Offer queue is full: Declining offer and removing from in progress: '%s'", o.ID)
		p.stat.Counter("queueFullDeclinesCounter").Inc(1)
		p.declineShort([]offer.Offer{o})
		// Remove AFTER decline: avoid the race where we haven't declined
		// yet but appear to be done.
		p.inProgressMutex.Lock()
		delete(p.offersInProgress, o.ID)
		p.inProgressMutex.Unlock()
	}

	if !p.multithreaded && p.queue.Size() > 0 {
		p.processQueuedOffers()
	}
}

// Dequeue drops a rescinded offer from the queue.
func (p *OfferProcessor) Dequeue(offerID offer.OfferID) {
	p.queue.Remove(offerID)
	p.inProgressMutex.Lock()
	delete(p.offersInProgress, offerID)
	p.inProgressMutex.Unlock()
}

// AwaitProcessed polls until every enqueued offer has been acted upon.
// Used by tests.
func (p *OfferProcessor) AwaitProcessed(timeout time.Duration) error {
	const pollInterval = 100 * time.Millisecond
	deadline := time.Now().Add(timeout)
	for {
		p.inProgressMutex.Lock()
		remaining := len(p.offersInProgress)
		p.inProgressMutex.Unlock()
		if remaining == 0 {
			log.Info("All offers processed.")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %v waiting for %d offer(s) to be processed", timeout, remaining)
		}
		log.Warnf("Offers in progress (%d) is non-empty, sleeping for %v ...", remaining, pollInterval)
		time.Sleep(pollInterval)
	}
}

// processQueuedOffers blocks for the next batch and runs it through the
// mux. Returns false once the queue has closed. Any error is fatal: the
// process exits rather than linger as a zombie with a half-applied batch.
func (p *OfferProcessor) processQueuedOffers() bool {
	log.Info("Waiting for queued offers...")
	offers := p.queue.TakeAll()
	if len(offers) == 0 {
		if atomic.LoadInt32(&p.initialized) == 0 {
			// Registration hasn't completed yet; wait for it.
			log.Info("Retrying wait for offers: Registration hasn't completed yet.")
			return true
		}
		return false
	}

	defer func() {
		p.stat.Counter("processedOffersCounter").Inc(int64(len(offers)))
		p.inProgressMutex.Lock()
		for _, o := range offers {
			delete(p.offersInProgress, o.ID)
		}
		log.Infof("Processed %d queued offer(s). %d offer(s) remain in progress.",
			len(offers), len(p.offersInProgress))
		p.inProgressMutex.Unlock()
	}()

	stopwatch := p.stat.Latency("processOffersLatency_ns").Time()
	err := p.evaluateOffers(offers)
	stopwatch.Stop()
	if err != nil {
		log.Error("Error encountered when processing offers, exiting to avoid zombie state")
		HardExitError(errors.NewError(err, errors.OfferProcessingExitCode))
	}
	return true
}

// evaluateOffers runs one batch through the mux, declines what nobody
// wanted, and accepts the recommended operations.
func (p *OfferProcessor) evaluateOffers(offers []offer.Offer) error {
	outcome := p.client.HandleOffers(offers)

	if len(outcome.Unused) > 0 {
		switch {
		case outcome.Result == run.NotReady || outcome.Result == run.Uninstalled || outcome.CleanupFailed:
			// Not ready (or conservatively backing off): brief decline so
			// the offers come back shortly.
			if err := p.declineShort(outcome.Unused); err != nil {
				return err
			}
		default:
			// Evaluated and not wanted: long decline.
			if err := p.declineLong(outcome.Unused); err != nil {
				return err
			}
		}
	}

	p.stat.Counter("recommendationsCounter").Inc(int64(len(outcome.Recommendations)))
	if err := p.accepter.Accept(outcome.Recommendations); err != nil {
		return err
	}

	if outcome.Result == run.Uninstalled {
		// The last run of an uninstalling framework is gone; tear down.
		log.Info("Framework uninstall has cleaned up all services, tearing down")
		if p.teardown != nil {
			p.teardown()
		}
	}
	return nil
}

// DeclineShort declines offers the scheduler wasn't able to look at.
func (p *OfferProcessor) DeclineShort(offers []offer.Offer) {
	if err := p.declineShort(offers); err != nil {
		log.Error("Failed to decline offers")
		HardExitError(errors.NewError(err, errors.OfferProcessingExitCode))
	}
}

func (p *OfferProcessor) declineShort(offers []offer.Offer) error {
	p.stat.Counter("declinesShortCounter").Inc(int64(len(offers)))
	return p.decline(offers, offer.ShortDeclineSeconds)
}

func (p *OfferProcessor) declineLong(offers []offer.Offer) error {
	p.stat.Counter("declinesLongCounter").Inc(int64(len(offers)))
	return p.decline(offers, offer.LongDeclineSeconds)
}

func (p *OfferProcessor) decline(offers []offer.Offer, refuseSeconds int) error {
	log.Infof("Declining %d unused offer(s) for %d seconds", len(offers), refuseSeconds)
	for _, o := range offers {
		if err := p.driver.DeclineOffer(o.ID, refuseSeconds); err != nil {
			return err
		}
	}
	return nil
}
