package offer

import (
	log "github.com/sirupsen/logrus"
)

// OfferResources pairs an offer with a subset of its resources.
type OfferResources struct {
	Offer     Offer
	Resources []Resource
}

// Synthetic returns a copy of the offer containing only the subset
// resources. Runs asked about unexpected resources only ever see the
// records that belong to them.
func (or *OfferResources) Synthetic() Offer {
	return Offer{
		ID:        or.Offer.ID,
		AgentID:   or.Offer.AgentID,
		Hostname:  or.Offer.Hostname,
		Resources: or.Resources,
	}
}

// Inventory is the per-pass projection of the reserved resources found on a
// set of offers.
//
// Reserved records carrying a service label are bucketed under that service.
// Reserved records with no service label are malformed; they have no owner
// to consult and are released outright. Plain unreserved records are
// dropped.
type Inventory struct {
	// serviceName -> (offer, resources) in input offer order.
	ByService map[string][]*OfferResources

	// Reserved resources with no service label, in input offer order.
	Malformed []*OfferResources

	serviceOrder []string
}

// ServiceNames returns the bucketed service names in first-seen order.
func (inv *Inventory) ServiceNames() []string {
	return inv.serviceOrder
}

// Classify walks each offer's resources once, bucketing reservations by
// their owning service. Deterministic and order-preserving; no I/O.
func Classify(offers []Offer) *Inventory {
	inv := &Inventory{ByService: map[string][]*OfferResources{}}

	for _, o := range offers {
		perService := map[string]*OfferResources{}
		var malformed *OfferResources
		for _, r := range o.Resources {
			if !IsReserved(r) {
				continue
			}
			name, ok := ServiceName(r)
			if !ok {
				if malformed == nil {
					malformed = &OfferResources{Offer: o}
					inv.Malformed = append(inv.Malformed, malformed)
				}
				malformed.Resources = append(malformed.Resources, r)
				continue
			}
			entry := perService[name]
			if entry == nil {
				entry = &OfferResources{Offer: o}
				perService[name] = entry
				if _, known := inv.ByService[name]; !known {
					inv.serviceOrder = append(inv.serviceOrder, name)
				}
				inv.ByService[name] = append(inv.ByService[name], entry)
			}
			entry.Resources = append(entry.Resources, r)
		}
	}

	if len(inv.Malformed) > 0 {
		log.Warnf("Encountered %d offer(s) with malformed reservations to clean up", len(inv.Malformed))
	}
	return inv
}
