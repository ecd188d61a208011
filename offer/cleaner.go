package offer

import (
	log "github.com/sirupsen/logrus"
)

// The Cleaner recommends operations for returning unexpected reservations
// and persistent volumes to the cluster. An agent may be inoperable long
// enough that the tasks resident there are relocated, then return later and
// begin offering reserved resources nobody expects anymore; those
// reservations would otherwise leak.
type Cleaner struct {
	expectedResourceIDs    map[string]bool
	expectedPersistenceIDs map[string]bool
}

// NewCleaner returns a Cleaner which releases any reservation not present
// in the expected resources.
func NewCleaner(expected []Resource) *Cleaner {
	c := &Cleaner{
		expectedResourceIDs:    map[string]bool{},
		expectedPersistenceIDs: map[string]bool{},
	}
	for _, id := range ResourceIDs(expected) {
		c.expectedResourceIDs[id] = true
	}
	for _, id := range PersistenceIDs(expected) {
		c.expectedPersistenceIDs[id] = true
	}
	return c
}

// Evaluate returns the release operations for the provided offers.
// The returned recommendations MUST be performed in order.
//
// ORDERING IS IMPORTANT:
//   The resource lifecycle is RESERVE -> CREATE -> DESTROY -> UNRESERVE,
//   so every DESTROY must precede every UNRESERVE.
func (c *Cleaner) Evaluate(offers []Offer) []Recommendation {
	recs := []Recommendation{}

	// First, any unexpected persistent volumes are DESTROYed.
	for _, o := range offers {
		for _, r := range c.volumesToDestroy(o) {
			log.Infof("Volume to be destroyed: %s (offer %s)", r.PersistenceID, o.ID)
			recs = append(recs, NewDestroyRecommendation(o, r))
		}
	}

	// Then unexpected reservations, volumes included, are UNRESERVEd.
	for _, o := range offers {
		for _, r := range c.reservationsToUnreserve(o) {
			log.Infof("Resource to be unreserved: %s (offer %s)", r.ResourceID, o.ID)
			recs = append(recs, NewUnreserveRecommendation(o, r))
		}
	}

	return recs
}

func (c *Cleaner) volumesToDestroy(o Offer) []Resource {
	seen := map[string]bool{}
	unexpected := []Resource{}
	for _, r := range o.Resources {
		id, ok := PersistenceID(r)
		if !ok || c.expectedPersistenceIDs[id] || seen[id] {
			continue
		}
		seen[id] = true
		unexpected = append(unexpected, r)
	}
	return unexpected
}

// Plain reservations come back before volumes within the same offer; the
// volumes were just destroyed above and unreserving them is the tail end of
// their teardown.
func (c *Cleaner) reservationsToUnreserve(o Offer) []Resource {
	seen := map[string]bool{}
	scalars := []Resource{}
	volumes := []Resource{}
	for _, r := range o.Resources {
		id, ok := ResourceID(r)
		if !ok || c.expectedResourceIDs[id] || seen[id] {
			continue
		}
		seen[id] = true
		if _, isVolume := PersistenceID(r); isVolume {
			volumes = append(volumes, r)
		} else {
			scalars = append(scalars, r)
		}
	}
	return append(scalars, volumes...)
}
