package offer

// FilterOutAccepted returns the offers which are not targeted by any of the
// provided recommendations, preserving the relative order of the survivors.
func FilterOutAccepted(offers []Offer, recommendations []Recommendation) []Offer {
	accepted := map[OfferID]bool{}
	for _, rec := range recommendations {
		accepted[rec.Offer.ID] = true
	}
	remaining := []Offer{}
	for _, o := range offers {
		if !accepted[o.ID] {
			remaining = append(remaining, o)
		}
	}
	return remaining
}

// OfferIDs returns the ids of the provided offers, in order.
func OfferIDs(offers []Offer) []OfferID {
	ids := make([]OfferID, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	return ids
}
