// Package offer models resource offers from the cluster resource manager
// and the operations the scheduler performs against them.
package offer

import (
	"fmt"
	"strings"
)

type OfferID string
type AgentID string

// A time-bounded bundle of resources presented by the resource manager.
// An offer is presented to at most one accept-or-decline call.
type Offer struct {
	ID        OfferID
	AgentID   AgentID
	Hostname  string
	Resources []Resource
}

// A single resource record on an offer. A record with a non-empty
// ResourceID is a reservation; a reservation with a non-empty
// PersistenceID is a persistent volume.
type Resource struct {
	Name  string
	Value float64

	Role      string
	Principal string

	// The run that owns this reservation, or empty if unlabeled.
	ServiceName string

	ResourceID    string
	PersistenceID string

	// Root of the mount source for MOUNT volumes, or empty.
	MountRoot string
}

// A task status update from the resource manager.
type TaskStatus struct {
	TaskID  string
	State   string
	Message string
}

const taskIDSeparator = "__"

// NewTaskID assembles a task id that routes status updates back to the
// owning run: <serviceName>__<taskName>__<uuid>.
func NewTaskID(serviceName, taskName, uuid string) string {
	return strings.Join([]string{serviceName, taskName, uuid}, taskIDSeparator)
}

// ServiceNameFromTaskID extracts the owning run's name from a task id.
// Malformed ids return ok=false, never an error or panic.
func ServiceNameFromTaskID(taskID string) (string, bool) {
	parts := strings.Split(taskID, taskIDSeparator)
	if len(parts) < 3 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

func (o Offer) String() string {
	return fmt.Sprintf("Offer{%s agent:%s resources:%d}", o.ID, o.AgentID, len(o.Resources))
}
