package framework

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/twitter/harbor/common/stats"
	"github.com/twitter/harbor/driver"
	"github.com/twitter/harbor/mux"
	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

// registrationClient records registration callbacks.
type registrationClient struct {
	scriptedClient
	registrations []bool
}

func (c *registrationClient) Registered(reRegistered bool) {
	c.registrations = append(c.registrations, reRegistered)
}

func newTestScheduler(t *testing.T, client EventClient, mockDriver *driver.MockDriver) (*Scheduler, *Store) {
	store := NewStore(state.MakeMemPersister())
	processor := NewOfferProcessor(client, mockDriver, 0, stats.NilStatsReceiver()).DisableThreading()
	return NewScheduler(store, client, processor), store
}

func TestSchedulerRegistrationStoresFrameworkID(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	client := &registrationClient{}
	client.outcome = mux.Outcome{Result: run.Processed}
	sched, store := newTestScheduler(t, client, driver.NewMockDriver(mockCtrl))

	sched.Registered("fw-1")

	id, ok, err := store.FetchFrameworkID()
	if err != nil || !ok || id != "fw-1" {
		t.Fatalf("Framework id not stored: %q ok=%v err=%v", id, ok, err)
	}
	if len(client.registrations) != 1 || client.registrations[0] != false {
		t.Fatalf("Expected registered(false), got %v", client.registrations)
	}

	// A second registered() is a master re-election, not initialization.
	sched.Registered("fw-1")
	if len(client.registrations) != 2 || client.registrations[1] != true {
		t.Fatalf("Expected registered(true) on re-election, got %v", client.registrations)
	}
}

func TestSchedulerDeclinesUntilReady(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockDriver := driver.NewMockDriver(mockCtrl)
	client := &registrationClient{}
	client.outcome = mux.Outcome{Result: run.Processed}
	sched, _ := newTestScheduler(t, client, mockDriver)
	sched.Registered("fw-1")

	// Not ready: short decline, the client never sees the offer.
	mockDriver.EXPECT().DeclineOffer(offer.OfferID("o1"), offer.ShortDeclineSeconds)
	sched.ResourceOffers([]offer.Offer{plainOffer("o1")})
	if len(client.batches) != 0 {
		t.Fatalf("Offers must not reach the client before ready: %v", client.batches)
	}

	// Ready: the offer flows through and is long-declined as unwanted.
	sched.SetReadyToAcceptOffers()
	mockDriver.EXPECT().DeclineOffer(offer.OfferID("o2"), offer.LongDeclineSeconds)
	sched.ResourceOffers([]offer.Offer{plainOffer("o2")})
	if len(client.batches) != 1 {
		t.Fatalf("Offer should reach the client once ready: %v", client.batches)
	}
}

func TestSchedulerRescindAndStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	client := &registrationClient{}
	client.outcome = mux.Outcome{Result: run.Processed}
	client.statusResult = run.UnknownTask
	sched, _ := newTestScheduler(t, client, driver.NewMockDriver(mockCtrl))
	sched.Registered("fw-1")

	// Neither should panic or touch the driver.
	sched.OfferRescinded("o1")
	sched.StatusUpdate(offer.TaskStatus{TaskID: "garbage", State: "TASK_LOST"})
	sched.AgentLost("agent-1")
	sched.ExecutorLost("executor-1", "agent-1", 137)
	sched.FrameworkMessage("executor-1", "agent-1", []byte("x"))
}
