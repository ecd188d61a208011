package taskset

import (
	"strings"
	"testing"

	"github.com/luci/go-render/render"

	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

const specYAML = `
name: web
tasks:
  - name: node-0
    cpus: 1
    mem: 128
    cmd: ./server
  - name: node-1
    cpus: 1
    mem: 128
    disk: 100
    cmd: ./server
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(specYAML))
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	if spec.Name != "web" || len(spec.Tasks) != 2 {
		t.Fatalf("Parsed wrong: %s", render.Render(spec))
	}
	if spec.Role != "web-role" || spec.Principal != "web-principal" {
		t.Fatalf("Expected defaulted role/principal, got %s/%s", spec.Role, spec.Principal)
	}
}

func TestParseSpecRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad name":       "name: a/b\ntasks: [{name: t, cpus: 1, mem: 1}]",
		"no tasks":       "name: web\ntasks: []",
		"dup task":       "name: web\ntasks: [{name: t, cpus: 1, mem: 1}, {name: t, cpus: 1, mem: 1}]",
		"zero cpus":      "name: web\ntasks: [{name: t, cpus: 0, mem: 1}]",
		"negative disk":  "name: web\ntasks: [{name: t, cpus: 1, mem: 1, disk: -5}]",
		"unknown fields": "name: web\nbogus: true\ntasks: [{name: t, cpus: 1, mem: 1}]",
	}
	for label, input := range cases {
		if _, err := ParseSpec([]byte(input)); err == nil {
			t.Errorf("Expected %s to be rejected", label)
		}
	}
}

func bigOffer(id, agent string) offer.Offer {
	return offer.Offer{ID: offer.OfferID(id), AgentID: offer.AgentID(agent), Resources: []offer.Resource{
		{Name: "cpus", Value: 4},
		{Name: "mem", Value: 4096},
		{Name: "disk", Value: 10240},
	}}
}

func makeRun(t *testing.T) (*Run, *state.StateStore) {
	spec, err := ParseSpec([]byte(specYAML))
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	stateStore := state.NewStateStore(state.MakeMemPersister(), spec.Name)
	return NewRun(spec, stateStore), stateStore
}

func TestRunNotReadyBeforeRegistration(t *testing.T) {
	r, _ := makeRun(t)
	if resp := r.Offers([]offer.Offer{bigOffer("o1", "agent-1")}); resp.Result != run.NotReady {
		t.Fatalf("Expected NOT_READY before registration, got %+v", resp)
	}
}

func TestRunLaunchesTasks(t *testing.T) {
	r, stateStore := makeRun(t)
	r.Registered(false)

	resp := r.Offers([]offer.Offer{bigOffer("o1", "agent-1"), bigOffer("o2", "agent-2")})
	if resp.Result != run.Processed {
		t.Fatalf("Expected PROCESSED, got %+v", resp)
	}

	// node-0: RESERVE + LAUNCH on o1. node-1 (has a volume):
	// RESERVE + CREATE + LAUNCH on o2.
	types := []string{}
	for _, rec := range resp.Recommendations {
		types = append(types, rec.Operation.Type.String()+"@"+string(rec.Offer.ID))
	}
	want := []string{"RESERVE@o1", "LAUNCH@o1", "RESERVE@o2", "CREATE@o2", "LAUNCH@o2"}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected %v, got %v", want, types)
	}

	records, err := stateStore.FetchTaskRecords()
	if err != nil || len(records) != 2 {
		t.Fatalf("Expected 2 task records, got %d (%v)", len(records), err)
	}
	for _, record := range records {
		if name, ok := offer.ServiceNameFromTaskID(record.TaskID); !ok || name != "web" {
			t.Fatalf("Task id %q should carry the service name", record.TaskID)
		}
		if record.State != "TASK_STAGING" {
			t.Fatalf("Expected TASK_STAGING, got %s", record.State)
		}
	}

	// Everything is launched; another pass consumes nothing.
	again := r.Offers([]offer.Offer{bigOffer("o3", "agent-3")})
	if again.Result != run.Processed || len(again.Recommendations) != 0 {
		t.Fatalf("Expected an idle pass, got %+v", again)
	}
}

func TestRunSkipsTooSmallOffers(t *testing.T) {
	r, _ := makeRun(t)
	r.Registered(false)

	small := offer.Offer{ID: "o1", AgentID: "agent-1", Resources: []offer.Resource{
		{Name: "cpus", Value: 0.1},
		{Name: "mem", Value: 16},
	}}
	resp := r.Offers([]offer.Offer{small})
	if len(resp.Recommendations) != 0 {
		t.Fatalf("Undersized offer should not be consumed: %s", render.Render(resp.Recommendations))
	}

	// Reserved capacity doesn't count as free.
	reserved := offer.Offer{ID: "o2", AgentID: "agent-1", Resources: []offer.Resource{
		{Name: "cpus", Value: 8, ResourceID: "r-other", ServiceName: "other"},
		{Name: "mem", Value: 8192, ResourceID: "r-other2", ServiceName: "other"},
	}}
	resp = r.Offers([]offer.Offer{reserved})
	if len(resp.Recommendations) != 0 {
		t.Fatalf("Reserved capacity should not be consumed: %s", render.Render(resp.Recommendations))
	}
}

func TestRunUnexpectedResources(t *testing.T) {
	r, stateStore := makeRun(t)
	r.Registered(false)
	r.Offers([]offer.Offer{bigOffer("o1", "agent-1"), bigOffer("o2", "agent-2")})

	records, _ := stateStore.FetchTaskRecords()
	ownedID := records[0].Resources[0].ResourceID

	synthetic := []offer.Offer{{ID: "o3", AgentID: "agent-1", Resources: []offer.Resource{
		{Name: "cpus", Value: 1, ResourceID: ownedID, ServiceName: "web"},
		{Name: "cpus", Value: 1, ResourceID: "stale", ServiceName: "web"},
	}}}
	resp := r.UnexpectedResources(synthetic)
	if resp.Result != run.CleanupProcessed {
		t.Fatalf("Expected PROCESSED, got %+v", resp)
	}
	if len(resp.Offers) != 1 || len(resp.Offers[0].Resources) != 1 ||
		resp.Offers[0].Resources[0].ResourceID != "stale" {
		t.Fatalf("Expected only the stale reservation, got %s", render.Render(resp.Offers))
	}
}

func TestRunStatusUpdates(t *testing.T) {
	r, stateStore := makeRun(t)
	r.Registered(false)
	r.Offers([]offer.Offer{bigOffer("o1", "agent-1"), bigOffer("o2", "agent-2")})

	records, _ := stateStore.FetchTaskRecords()
	taskID := records[0].TaskID

	if got := r.Status(offer.TaskStatus{TaskID: taskID, State: "TASK_RUNNING"}); got != run.StatusProcessed {
		t.Fatalf("Expected PROCESSED, got %v", got)
	}
	records, _ = stateStore.FetchTaskRecords()
	found := false
	for _, record := range records {
		if record.TaskID == taskID && record.State == "TASK_RUNNING" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Status should be persisted: %s", render.Render(records))
	}

	if got := r.Status(offer.TaskStatus{
		TaskID: offer.NewTaskID("web", "node-9", "uuid"), State: "TASK_LOST"}); got != run.UnknownTask {
		t.Fatalf("Expected UNKNOWN_TASK for an unrecorded task, got %v", got)
	}
}

func TestRunToUninstall(t *testing.T) {
	r, stateStore := makeRun(t)
	replacement := r.ToUninstall()
	if replacement.Mode() != run.Uninstalling {
		t.Fatal("Expected an uninstalling replacement")
	}
	if !stateStore.IsUninstalling() {
		t.Fatal("ToUninstall should flag the state store")
	}
}
