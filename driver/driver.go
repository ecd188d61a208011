// Package driver speaks to the cluster resource manager: outbound
// accept/decline calls and the inbound event subscription that feeds the
// framework scheduler's callbacks.
package driver

import (
	"github.com/twitter/harbor/offer"
)

// Scheduler is the callback surface the driver delivers events into. The
// framework package implements it.
type Scheduler interface {
	Registered(frameworkID string)
	Reregistered()
	ResourceOffers(offers []offer.Offer)
	StatusUpdate(status offer.TaskStatus)
	OfferRescinded(offerID offer.OfferID)
	FrameworkMessage(executorID string, agentID offer.AgentID, data []byte)
	Disconnected()
	AgentLost(agentID offer.AgentID)
	ExecutorLost(executorID string, agentID offer.AgentID, status int)
	Error(message string)
}
