// Package queue provides the bounded FIFO of pending offers consumed by the
// offer processor.
package queue

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/offer"
)

// OfferQueue is a bounded FIFO of offers with rescind support. A single
// consumer drains it with TakeAll; any number of producers may Offer into
// it. Offers rescinded by the resource manager are removed in place.
type OfferQueue struct {
	mutex    sync.Mutex
	notEmpty *sync.Cond
	offers   []offer.Offer
	capacity int
	closed   bool
}

// NewOfferQueue returns a queue holding up to capacity offers.
// A capacity of zero means unbounded.
func NewOfferQueue(capacity int) *OfferQueue {
	q := &OfferQueue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mutex)
	return q
}

// Offer enqueues o, returning false if the queue is full or closed.
// The caller is expected to decline rejected offers.
func (q *OfferQueue) Offer(o offer.Offer) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return false
	}
	if q.capacity > 0 && len(q.offers) >= q.capacity {
		return false
	}
	q.offers = append(q.offers, o)
	q.notEmpty.Signal()
	return true
}

// TakeAll blocks until at least one offer is available, then atomically
// drains everything currently enqueued, preserving FIFO order. Returns an
// empty batch once the queue has been closed.
func (q *OfferQueue) TakeAll() []offer.Offer {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for len(q.offers) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	batch := q.offers
	q.offers = nil
	return batch
}

// Remove drops a rescinded offer from the queue. Returns false if the offer
// had already been dequeued (or was never enqueued), in which case this is
// a no-op; the offer will simply fail downstream when acted upon.
func (q *OfferQueue) Remove(offerID offer.OfferID) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for i, o := range q.offers {
		if o.ID == offerID {
			q.offers = append(q.offers[:i], q.offers[i+1:]...)
			return true
		}
	}
	log.Infof("Rescinded offer %s was not in the queue", offerID)
	return false
}

// Size returns the number of offers currently enqueued.
func (q *OfferQueue) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.offers)
}

// Close wakes the consumer; subsequent TakeAll calls return empty batches
// and subsequent Offer calls are rejected.
func (q *OfferQueue) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
}
