package offer

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/common/stats"
)

// Decline durations, in seconds. SHORT is used when the scheduler wasn't
// able to actually look at the offers (not ready, queue overflow); LONG is
// used for offers which were evaluated and not wanted.
const (
	ShortDeclineSeconds = 5
	LongDeclineSeconds  = 1200

	// Unused resources on an accept call are refused for this long.
	AcceptFilterSeconds = 1
)

// Driver is the outbound capability against the resource manager. The
// driver handle is threaded through constructors; there is no process-wide
// holder.
type Driver interface {
	// AcceptOffers consumes the identified offers, all of which must
	// belong to a single agent, applying the operations in order.
	AcceptOffers(offerIDs []OfferID, operations []Operation, refuseSeconds int) error

	// DeclineOffer returns an unused offer with a refusal hint.
	DeclineOffer(offerID OfferID, refuseSeconds int) error
}

// The Accepter extracts the operations encapsulated by recommendations and
// accepts offers with those operations.
type Accepter struct {
	driver Driver
	stat   stats.StatsReceiver
}

func NewAccepter(driver Driver, stat stats.StatsReceiver) *Accepter {
	return &Accepter{driver: driver, stat: stat}
}

// Accept submits one accept call per agent covered by the recommendations.
// An error from the driver is fatal to the caller; reservations must not be
// left half-applied against a driver in an unknown state.
func (a *Accepter) Accept(recommendations []Recommendation) error {
	if len(recommendations) == 0 {
		log.Info("No recommendations, nothing to do")
		return nil
	}

	// Group by agent: the resource manager requires that an accept call
	// only applies to a single agent. Ordering within each group is
	// preserved so that the resource lifecycle ordering holds.
	byAgent := groupByAgent(recommendations)
	for _, agentID := range sortedAgentIDs(byAgent) {
		agentRecs := byAgent[agentID]
		offerIDs := distinctOfferIDs(agentRecs)
		operations := make([]Operation, 0, len(agentRecs))
		for _, rec := range agentRecs {
			operations = append(operations, rec.Operation)
		}

		log.Infof("Sending %d operation(s) for agent %s:", len(operations), agentID)
		for _, op := range operations {
			log.Infof("  %s", op.Type)
		}
		a.stat.Counter("acceptOperationsCounter").Inc(int64(len(operations)))

		if err := a.driver.AcceptOffers(offerIDs, operations, AcceptFilterSeconds); err != nil {
			return err
		}
	}
	return nil
}

// Groups recommendations by agent, preserving their existing order within
// each group.
func groupByAgent(recommendations []Recommendation) map[AgentID][]Recommendation {
	byAgent := map[AgentID][]Recommendation{}
	for _, rec := range recommendations {
		byAgent[rec.Offer.AgentID] = append(byAgent[rec.Offer.AgentID], rec)
	}
	return byAgent
}

// Agent-sorted iteration isn't required for correctness but makes test
// output stable.
func sortedAgentIDs(byAgent map[AgentID][]Recommendation) []AgentID {
	ids := make([]AgentID, 0, len(byAgent))
	for id := range byAgent {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func distinctOfferIDs(recommendations []Recommendation) []OfferID {
	seen := map[OfferID]bool{}
	ids := []OfferID{}
	for _, rec := range recommendations {
		if !seen[rec.Offer.ID] {
			seen[rec.Offer.ID] = true
			ids = append(ids, rec.Offer.ID)
		}
	}
	return ids
}
