package generator

import (
	"strings"
	"testing"

	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

const webSpec = "name: web\ntasks: [{name: node-0, cpus: 1, mem: 128}]"

func TestRegistryDefaultType(t *testing.T) {
	persister := state.MakeMemPersister()
	registry := NewRegistry("yaml").Register("yaml", NewYAMLGenerator(persister))

	if _, resolved, ok := registry.Get(""); !ok || resolved != "yaml" {
		t.Fatalf("Empty type should resolve to the default, got %q ok=%v", resolved, ok)
	}
	if _, _, ok := registry.Get("spark"); ok {
		t.Fatal("Unknown type should not resolve")
	}
}

func TestYAMLGeneratorGenerate(t *testing.T) {
	persister := state.MakeMemPersister()
	g := NewYAMLGenerator(persister)

	generated, err := g.Generate([]byte(webSpec))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if generated.Name() != "web" || generated.Mode() != run.Active {
		t.Fatalf("Generated wrong run: %s / %v", generated.Name(), generated.Mode())
	}
	if g.MaxDataSizeBytes() <= 0 {
		t.Fatal("yaml payloads must be size-limited")
	}

	if _, err := g.Generate([]byte("not: [valid")); err == nil {
		t.Fatal("Invalid yaml should be rejected")
	}
}

func TestRecoverRuns(t *testing.T) {
	persister := state.MakeMemPersister()
	specStore := state.NewSpecStore(persister)
	registry := NewRegistry("yaml").Register("yaml", NewYAMLGenerator(persister))

	if _, err := specStore.Store(state.NewStateStore(persister, "web"), []byte(webSpec), "yaml"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	runs, err := registry.RecoverRuns(specStore, persister)
	if err != nil {
		t.Fatalf("RecoverRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Name() != "web" || runs[0].Mode() != run.Active {
		t.Fatalf("Expected active run web, got %v", runs)
	}
}

func TestRecoverRunsResumesUninstall(t *testing.T) {
	persister := state.MakeMemPersister()
	specStore := state.NewSpecStore(persister)
	registry := NewRegistry("yaml").Register("yaml", NewYAMLGenerator(persister))

	stateStore := state.NewStateStore(persister, "web")
	if _, err := specStore.Store(stateStore, []byte(webSpec), "yaml"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := stateStore.SetUninstalling(); err != nil {
		t.Fatalf("SetUninstalling failed: %v", err)
	}

	runs, err := registry.RecoverRuns(specStore, persister)
	if err != nil {
		t.Fatalf("RecoverRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Mode() != run.Uninstalling {
		t.Fatalf("Expected the run reconstructed in uninstall mode, got %v", runs)
	}
}

func TestRecoverRunsUnknownTypeFailsInAggregate(t *testing.T) {
	persister := state.MakeMemPersister()
	specStore := state.NewSpecStore(persister)
	registry := NewRegistry("yaml").Register("yaml", NewYAMLGenerator(persister))

	if _, err := specStore.Store(state.NewStateStore(persister, "web"), []byte(webSpec), "yaml"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := specStore.Store(state.NewStateStore(persister, "batch"), []byte("spark job"), "spark"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	_, err := registry.RecoverRuns(specStore, persister)
	if err == nil {
		t.Fatal("Unknown generator type should fail recovery")
	}
	if !strings.Contains(err.Error(), "batch") {
		t.Fatalf("Aggregate should name the damaged service: %v", err)
	}
}
