package offer

import (
	"errors"
	"testing"

	"github.com/luci/go-render/render"

	"github.com/twitter/harbor/common/stats"
)

type acceptCall struct {
	offerIDs      []OfferID
	operations    []Operation
	refuseSeconds int
}

type fakeDriver struct {
	accepts []acceptCall
	err     error
}

func (d *fakeDriver) AcceptOffers(offerIDs []OfferID, operations []Operation, refuseSeconds int) error {
	d.accepts = append(d.accepts, acceptCall{offerIDs, operations, refuseSeconds})
	return d.err
}

func (d *fakeDriver) DeclineOffer(offerID OfferID, refuseSeconds int) error {
	return nil
}

func TestAccepterEmpty(t *testing.T) {
	driver := &fakeDriver{}
	if err := NewAccepter(driver, stats.NilStatsReceiver()).Accept(nil); err != nil {
		t.Fatalf("Expected no error for empty recommendations, got %v", err)
	}
	if len(driver.accepts) != 0 {
		t.Fatalf("Expected no driver calls, got %s", render.Render(driver.accepts))
	}
}

func TestAccepterGroupsByAgent(t *testing.T) {
	o1 := Offer{ID: "O1", AgentID: "agent2", Resources: []Resource{reservedCPU("r1")}}
	o2 := Offer{ID: "O2", AgentID: "agent1", Resources: []Resource{reservedCPU("r2")}}
	o3 := Offer{ID: "O3", AgentID: "agent2", Resources: []Resource{reservedCPU("r3")}}

	recs := []Recommendation{
		NewUnreserveRecommendation(o1, o1.Resources[0]),
		NewUnreserveRecommendation(o2, o2.Resources[0]),
		NewUnreserveRecommendation(o3, o3.Resources[0]),
	}

	driver := &fakeDriver{}
	if err := NewAccepter(driver, stats.NilStatsReceiver()).Accept(recs); err != nil {
		t.Fatalf("Unexpected accept error: %v", err)
	}

	// One call per agent, agent-sorted, with intra-group order preserved.
	if len(driver.accepts) != 2 {
		t.Fatalf("Expected 2 accept calls, got %s", render.Render(driver.accepts))
	}
	if driver.accepts[0].offerIDs[0] != "O2" {
		t.Fatalf("Expected agent1's offer first, got %s", render.Render(driver.accepts[0]))
	}
	second := driver.accepts[1]
	if len(second.offerIDs) != 2 || second.offerIDs[0] != "O1" || second.offerIDs[1] != "O3" {
		t.Fatalf("Expected agent2 group [O1 O3], got %s", render.Render(second))
	}
	if second.operations[0].Resources[0].ResourceID != "r1" ||
		second.operations[1].Resources[0].ResourceID != "r3" {
		t.Fatalf("Operation order not preserved within agent group: %s", render.Render(second))
	}
	if second.refuseSeconds != AcceptFilterSeconds {
		t.Fatalf("Expected accept filter of %d seconds, got %d", AcceptFilterSeconds, second.refuseSeconds)
	}
}

func TestAccepterDedupsOfferIDs(t *testing.T) {
	o := Offer{ID: "O1", AgentID: "agent1", Resources: []Resource{reservedVolume("r1", "r1")}}
	recs := []Recommendation{
		NewDestroyRecommendation(o, o.Resources[0]),
		NewUnreserveRecommendation(o, o.Resources[0]),
	}

	driver := &fakeDriver{}
	if err := NewAccepter(driver, stats.NilStatsReceiver()).Accept(recs); err != nil {
		t.Fatalf("Unexpected accept error: %v", err)
	}
	if len(driver.accepts) != 1 || len(driver.accepts[0].offerIDs) != 1 {
		t.Fatalf("Expected one call with one distinct offer id, got %s", render.Render(driver.accepts))
	}
	ops := driver.accepts[0].operations
	if len(ops) != 2 || ops[0].Type != Destroy || ops[1].Type != Unreserve {
		t.Fatalf("Expected [DESTROY UNRESERVE], got %s", render.Render(ops))
	}
}

func TestAccepterDriverError(t *testing.T) {
	o := Offer{ID: "O1", AgentID: "agent1", Resources: []Resource{reservedCPU("r1")}}
	driver := &fakeDriver{err: errors.New("driver unavailable")}

	err := NewAccepter(driver, stats.NilStatsReceiver()).Accept(
		[]Recommendation{NewUnreserveRecommendation(o, o.Resources[0])})
	if err == nil {
		t.Fatal("Expected driver error to propagate")
	}
}
