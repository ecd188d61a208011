package driver

import (
	"github.com/twitter/harbor/offer"
)

// Wire types for the resource manager's JSON scheduler API. Events arrive
// as newline-delimited JSON on the subscription stream; calls are posted
// one JSON document at a time.

type wireResource struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Role          string  `json:"role,omitempty"`
	Principal     string  `json:"principal,omitempty"`
	ServiceName   string  `json:"service_name,omitempty"`
	ResourceID    string  `json:"resource_id,omitempty"`
	PersistenceID string  `json:"persistence_id,omitempty"`
	MountRoot     string  `json:"mount_root,omitempty"`
}

type wireOffer struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agent_id"`
	Hostname  string         `json:"hostname,omitempty"`
	Resources []wireResource `json:"resources"`
}

type wireTask struct {
	TaskID    string         `json:"task_id"`
	Name      string         `json:"name"`
	AgentID   string         `json:"agent_id"`
	Resources []wireResource `json:"resources"`
	Data      []byte         `json:"data,omitempty"`
}

type wireOperation struct {
	Type      string         `json:"type"`
	Resources []wireResource `json:"resources,omitempty"`
	Task      *wireTask      `json:"task,omitempty"`
}

type wireFilters struct {
	RefuseSeconds int `json:"refuse_seconds"`
}

type wireStatus struct {
	TaskID  string `json:"task_id"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// One inbound event. Type selects which member is set.
type wireEvent struct {
	Type string `json:"type"`

	Subscribed *struct {
		FrameworkID string `json:"framework_id"`
	} `json:"subscribed,omitempty"`

	Offers *struct {
		Offers []wireOffer `json:"offers"`
	} `json:"offers,omitempty"`

	Update *struct {
		Status wireStatus `json:"status"`
	} `json:"update,omitempty"`

	Rescind *struct {
		OfferID string `json:"offer_id"`
	} `json:"rescind,omitempty"`

	Message *struct {
		ExecutorID string `json:"executor_id"`
		AgentID    string `json:"agent_id"`
		Data       []byte `json:"data"`
	} `json:"message,omitempty"`

	AgentRemoved *struct {
		AgentID string `json:"agent_id"`
	} `json:"agent_removed,omitempty"`

	ExecutorRemoved *struct {
		ExecutorID string `json:"executor_id"`
		AgentID    string `json:"agent_id"`
		Status     int    `json:"status"`
	} `json:"executor_removed,omitempty"`

	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`

	// Heartbeats carry nothing.
}

// One outbound call.
type wireCall struct {
	Type        string `json:"type"`
	FrameworkID string `json:"framework_id,omitempty"`

	Subscribe *struct {
		FrameworkName string `json:"framework_name"`
		FrameworkID   string `json:"framework_id,omitempty"`
	} `json:"subscribe,omitempty"`

	Accept *struct {
		OfferIDs   []string        `json:"offer_ids"`
		Operations []wireOperation `json:"operations"`
		Filters    wireFilters     `json:"filters"`
	} `json:"accept,omitempty"`

	Decline *struct {
		OfferIDs []string    `json:"offer_ids"`
		Filters  wireFilters `json:"filters"`
	} `json:"decline,omitempty"`

	Teardown *struct{} `json:"teardown,omitempty"`
}

func fromWireResources(resources []wireResource) []offer.Resource {
	out := make([]offer.Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, offer.Resource{
			Name:          r.Name,
			Value:         r.Value,
			Role:          r.Role,
			Principal:     r.Principal,
			ServiceName:   r.ServiceName,
			ResourceID:    r.ResourceID,
			PersistenceID: r.PersistenceID,
			MountRoot:     r.MountRoot,
		})
	}
	return out
}

func toWireResources(resources []offer.Resource) []wireResource {
	out := make([]wireResource, 0, len(resources))
	for _, r := range resources {
		out = append(out, wireResource{
			Name:          r.Name,
			Value:         r.Value,
			Role:          r.Role,
			Principal:     r.Principal,
			ServiceName:   r.ServiceName,
			ResourceID:    r.ResourceID,
			PersistenceID: r.PersistenceID,
			MountRoot:     r.MountRoot,
		})
	}
	return out
}

func fromWireOffer(o wireOffer) offer.Offer {
	return offer.Offer{
		ID:        offer.OfferID(o.ID),
		AgentID:   offer.AgentID(o.AgentID),
		Hostname:  o.Hostname,
		Resources: fromWireResources(o.Resources),
	}
}

func toWireOperation(op offer.Operation) wireOperation {
	wire := wireOperation{
		Type:      op.Type.String(),
		Resources: toWireResources(op.Resources),
	}
	if op.Task != nil {
		wire.Task = &wireTask{
			TaskID:    op.Task.TaskID,
			Name:      op.Task.Name,
			AgentID:   string(op.Task.AgentID),
			Resources: toWireResources(op.Task.Resources),
			Data:      op.Task.Data,
		}
	}
	return wire
}
