package state

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/twitter/harbor/offer"
)

func TestStateStoreProperties(t *testing.T) {
	persister := MakeMemPersister()
	store := NewStateStore(persister, "svc-a")

	if _, err := store.FetchProperty("missing"); !IsNotFound(err) {
		t.Fatalf("Expected NOT_FOUND for a missing property, got %v", err)
	}

	if err := store.StoreProperty("spec-id", []byte("yaml-abc")); err != nil {
		t.Fatalf("StoreProperty failed: %v", err)
	}
	data, err := store.FetchProperty("spec-id")
	if err != nil || string(data) != "yaml-abc" {
		t.Fatalf("FetchProperty got %q, %v", data, err)
	}

	names, err := store.PropertyNames()
	if err != nil || len(names) != 1 || names[0] != "spec-id" {
		t.Fatalf("PropertyNames got %v, %v", names, err)
	}

	// Properties of one service are invisible to another.
	other := NewStateStore(persister, "svc-b")
	if _, err := other.FetchProperty("spec-id"); !IsNotFound(err) {
		t.Fatalf("Namespaces leaked: %v", err)
	}

	if err := store.DeleteProperty("spec-id"); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}
	if _, err := store.FetchProperty("spec-id"); !IsNotFound(err) {
		t.Fatalf("Expected NOT_FOUND after delete, got %v", err)
	}
}

func TestStateStoreFrameworkID(t *testing.T) {
	persister := MakeMemPersister()
	store := NewStateStore(persister, "")

	if _, err := store.FetchFrameworkID(); !IsNotFound(err) {
		t.Fatalf("Expected NOT_FOUND before registration, got %v", err)
	}
	if err := store.StoreFrameworkID("framework-1"); err != nil {
		t.Fatalf("StoreFrameworkID failed: %v", err)
	}
	id, err := store.FetchFrameworkID()
	if err != nil || id != "framework-1" {
		t.Fatalf("FetchFrameworkID got %q, %v", id, err)
	}

	// Cleared after a completed framework uninstall.
	if err := store.ClearFrameworkID(); err != nil {
		t.Fatalf("ClearFrameworkID failed: %v", err)
	}
	if _, err := store.FetchFrameworkID(); !IsNotFound(err) {
		t.Fatalf("Expected NOT_FOUND after clear, got %v", err)
	}
}

func TestTaskRecordRoundTrip(t *testing.T) {
	persister := MakeMemPersister()
	store := NewStateStore(persister, "svc-a")

	record := &TaskRecord{
		Name:    "node-0",
		TaskID:  offer.NewTaskID("svc-a", "node-0", "uuid-1"),
		AgentID: "agent-1",
		State:   "TASK_RUNNING",
		Resources: []offer.Resource{
			{Name: "cpus", Value: 1, Role: "harbor-role", Principal: "harbor", ResourceID: "r1"},
			{Name: "disk", Value: 100, Role: "harbor-role", Principal: "harbor",
				ResourceID: "r2", PersistenceID: "r2", MountRoot: "/mnt/data"},
		},
	}
	if err := store.StoreTaskRecord(record); err != nil {
		t.Fatalf("StoreTaskRecord failed: %v", err)
	}

	records, err := store.FetchTaskRecords()
	if err != nil || len(records) != 1 {
		t.Fatalf("FetchTaskRecords got %d records, %v", len(records), err)
	}
	if !reflect.DeepEqual(record, records[0]) {
		t.Fatalf("Round trip mismatch:\n%s\n%s", spew.Sdump(record), spew.Sdump(records[0]))
	}

	if err := store.DeleteTaskRecord("node-0"); err != nil {
		t.Fatalf("DeleteTaskRecord failed: %v", err)
	}
	records, err = store.FetchTaskRecords()
	if err != nil || len(records) != 0 {
		t.Fatalf("Expected no records after delete, got %d, %v", len(records), err)
	}
}

func TestStateStoreUninstallBitAndWipe(t *testing.T) {
	persister := MakeMemPersister()
	store := NewStateStore(persister, "svc-a")

	if store.IsUninstalling() {
		t.Fatal("Fresh namespace should not be uninstalling")
	}
	if err := store.SetUninstalling(); err != nil {
		t.Fatalf("SetUninstalling failed: %v", err)
	}
	if !store.IsUninstalling() {
		t.Fatal("Uninstall bit should persist")
	}

	if err := store.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	if store.IsUninstalling() {
		t.Fatal("Wipe should clear the uninstall bit")
	}
	namespaces, err := ServiceNamespaces(persister)
	if err != nil || len(namespaces) != 0 {
		t.Fatalf("Wipe should remove the namespace entirely: %v, %v", namespaces, err)
	}
}
