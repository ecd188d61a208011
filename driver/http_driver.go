package driver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/offer"
)

// HTTPDriver is the JSON/HTTP client for the resource manager's scheduler
// API. Outbound calls (accept/decline) go through a retrying pester client;
// the inbound subscription is a long-lived streaming POST whose events are
// newline-delimited JSON.
type HTTPDriver struct {
	endpoint      string
	frameworkName string

	client *pester.Client

	mutex       sync.Mutex
	frameworkID string
	stopped     bool
}

func NewHTTPDriver(masterAddr, frameworkName string) *HTTPDriver {
	client := pester.New()
	client.Concurrency = 1
	client.MaxRetries = 5
	client.Backoff = pester.ExponentialBackoff
	client.KeepLog = true
	return &HTTPDriver{
		endpoint:      fmt.Sprintf("http://%s/api/v1/scheduler", masterAddr),
		frameworkName: frameworkName,
		client:        client,
	}
}

// AcceptOffers submits one accept call. All offers must target one agent;
// the accepter guarantees that.
func (d *HTTPDriver) AcceptOffers(offerIDs []offer.OfferID, operations []offer.Operation, refuseSeconds int) error {
	call := wireCall{Type: "ACCEPT", FrameworkID: d.FrameworkID()}
	call.Accept = &struct {
		OfferIDs   []string        `json:"offer_ids"`
		Operations []wireOperation `json:"operations"`
		Filters    wireFilters     `json:"filters"`
	}{
		Filters: wireFilters{RefuseSeconds: refuseSeconds},
	}
	for _, id := range offerIDs {
		call.Accept.OfferIDs = append(call.Accept.OfferIDs, string(id))
	}
	for _, op := range operations {
		call.Accept.Operations = append(call.Accept.Operations, toWireOperation(op))
	}
	return d.post(call)
}

func (d *HTTPDriver) DeclineOffer(offerID offer.OfferID, refuseSeconds int) error {
	call := wireCall{Type: "DECLINE", FrameworkID: d.FrameworkID()}
	call.Decline = &struct {
		OfferIDs []string    `json:"offer_ids"`
		Filters  wireFilters `json:"filters"`
	}{
		OfferIDs: []string{string(offerID)},
		Filters:  wireFilters{RefuseSeconds: refuseSeconds},
	}
	return d.post(call)
}

// Teardown asks the resource manager to deregister the framework for good.
// Called at the end of a framework-wide uninstall.
func (d *HTTPDriver) Teardown() error {
	return d.post(wireCall{Type: "TEARDOWN", FrameworkID: d.FrameworkID(), Teardown: &struct{}{}})
}

func (d *HTTPDriver) FrameworkID() string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.frameworkID
}

// Stop ends the subscription loop after the current connection drops.
func (d *HTTPDriver) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopped = true
}

func (d *HTTPDriver) post(call wireCall) error {
	body, err := json.Marshal(call)
	if err != nil {
		return err
	}
	resp, err := d.client.Post(d.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "driver unavailable for %s call", call.Type)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("%s call rejected with %d: %s", call.Type, resp.StatusCode, payload)
	}
	return nil
}

// Run subscribes and pumps events into the scheduler until Stop is called.
// A previously stored framework id makes this a re-registration. Connection
// losses reconnect under exponential backoff; an established subscription
// that drops is reported via Disconnected (which the framework treats as
// fatal).
func (d *HTTPDriver) Run(sched Scheduler, previousFrameworkID string) error {
	d.mutex.Lock()
	d.frameworkID = previousFrameworkID
	d.mutex.Unlock()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // Retry until subscribed or stopped.
	subscribedOnce := false

	for {
		d.mutex.Lock()
		stopped := d.stopped
		d.mutex.Unlock()
		if stopped {
			log.Info("Driver stopped, exiting event loop")
			return nil
		}

		err := d.subscribe(sched, &subscribedOnce)
		if err == nil {
			// Stream ended cleanly; treat like any other drop.
			err = errors.New("subscription stream closed")
		}
		if subscribedOnce {
			// Loss of an established subscription is for upstream to
			// judge; by default the framework scheduler exits on it.
			log.Errorf("Subscription lost: %v", err)
			sched.Disconnected()
			subscribedOnce = false
		}
		wait := b.NextBackOff()
		log.Warnf("Subscribe failed (%v), retrying in %v", err, wait)
		time.Sleep(wait)
	}
}

func (d *HTTPDriver) subscribe(sched Scheduler, subscribedOnce *bool) error {
	call := wireCall{Type: "SUBSCRIBE", FrameworkID: d.FrameworkID()}
	call.Subscribe = &struct {
		FrameworkName string `json:"framework_name"`
		FrameworkID   string `json:"framework_id,omitempty"`
	}{
		FrameworkName: d.frameworkName,
		FrameworkID:   d.FrameworkID(),
	}
	body, err := json.Marshal(call)
	if err != nil {
		return err
	}

	// The subscription holds one connection open indefinitely; it gets a
	// plain client, not the retrying one.
	resp, err := http.Post(d.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("subscribe rejected with %d: %s", resp.StatusCode, payload)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		event := wireEvent{}
		if err := json.Unmarshal(line, &event); err != nil {
			log.Errorf("Dropping undecodable event: %v", err)
			continue
		}
		d.dispatch(sched, event, subscribedOnce)
	}
	return scanner.Err()
}

func (d *HTTPDriver) dispatch(sched Scheduler, event wireEvent, subscribedOnce *bool) {
	switch event.Type {
	case "SUBSCRIBED":
		if event.Subscribed == nil {
			log.Error("SUBSCRIBED event missing body")
			return
		}
		reRegistration := *subscribedOnce
		*subscribedOnce = true
		d.mutex.Lock()
		d.frameworkID = event.Subscribed.FrameworkID
		d.mutex.Unlock()
		if reRegistration {
			sched.Reregistered()
		} else {
			sched.Registered(event.Subscribed.FrameworkID)
		}
	case "OFFERS":
		if event.Offers == nil {
			return
		}
		offers := make([]offer.Offer, 0, len(event.Offers.Offers))
		for _, o := range event.Offers.Offers {
			offers = append(offers, fromWireOffer(o))
		}
		sched.ResourceOffers(offers)
	case "UPDATE":
		if event.Update == nil {
			return
		}
		sched.StatusUpdate(offer.TaskStatus{
			TaskID:  event.Update.Status.TaskID,
			State:   event.Update.Status.State,
			Message: event.Update.Status.Message,
		})
	case "RESCIND":
		if event.Rescind == nil {
			return
		}
		sched.OfferRescinded(offer.OfferID(event.Rescind.OfferID))
	case "MESSAGE":
		if event.Message == nil {
			return
		}
		sched.FrameworkMessage(event.Message.ExecutorID, offer.AgentID(event.Message.AgentID), event.Message.Data)
	case "AGENT_REMOVED":
		if event.AgentRemoved == nil {
			return
		}
		sched.AgentLost(offer.AgentID(event.AgentRemoved.AgentID))
	case "EXECUTOR_REMOVED":
		if event.ExecutorRemoved == nil {
			return
		}
		sched.ExecutorLost(event.ExecutorRemoved.ExecutorID,
			offer.AgentID(event.ExecutorRemoved.AgentID), event.ExecutorRemoved.Status)
	case "ERROR":
		message := ""
		if event.Error != nil {
			message = event.Error.Message
		}
		sched.Error(message)
	case "HEARTBEAT":
		// Nothing to do.
	default:
		log.Warnf("Ignoring unknown event type %q", event.Type)
	}
}
