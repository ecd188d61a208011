package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

func specIDFor(specType string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s-%s", specType, hex.EncodeToString(sum[:]))
}

func TestSpecStoreRoundTrip(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)
	runStore := NewStateStore(persister, "svc-a")

	data := []byte("hello")
	specID, err := specStore.Store(runStore, data, "yaml")
	if err != nil {
		t.Fatalf("Unexpected store error: %v", err)
	}
	if want := specIDFor("yaml", data); specID != want {
		t.Fatalf("Expected spec id %s, got %s", want, specID)
	}

	got, ok, err := specStore.SpecID(runStore)
	if err != nil || !ok || got != specID {
		t.Fatalf("Expected spec id %s back, got %q ok=%v err=%v", specID, got, ok, err)
	}
}

func TestSpecStoreDeduplicates(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)
	data := []byte("hello")

	s1 := NewStateStore(persister, "svc-1")
	s2 := NewStateStore(persister, "svc-2")
	id1, err := specStore.Store(s1, data, "yaml")
	if err != nil {
		t.Fatalf("First store failed: %v", err)
	}
	id2, err := specStore.Store(s2, data, "yaml")
	if err != nil {
		t.Fatalf("Second store failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("Identical submissions should share an id: %s vs %s", id1, id2)
	}

	// A single storage record backs both services.
	specs, err := persister.Children("Specs")
	if err != nil || len(specs) != 1 || specs[0] != id1 {
		t.Fatalf("Expected a single spec record %s, got %v (%v)", id1, specs, err)
	}
	storedType, _ := persister.Get(JoinPath("Specs", id1, "Type"))
	storedData, _ := persister.Get(JoinPath("Specs", id1, "Data"))
	if string(storedType) != "yaml" || string(storedData) != "hello" {
		t.Fatalf("Stored record mismatch: type=%q data=%q", storedType, storedData)
	}
}

func TestSpecStoreRejectsBadInput(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)
	runStore := NewStateStore(persister, "svc-a")

	if _, err := specStore.Store(runStore, nil, "yaml"); err == nil {
		t.Fatal("Expected nil data to be rejected")
	}
	if _, err := specStore.Store(runStore, []byte("x"), ""); err == nil {
		t.Fatal("Expected empty type to be rejected")
	}
}

func TestSpecStoreMismatchIsLogicError(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)
	runStore := NewStateStore(persister, "svc-a")

	data := []byte("hello")
	specID, err := specStore.Store(runStore, data, "yaml")
	if err != nil {
		t.Fatalf("Unexpected store error: %v", err)
	}

	// Tamper with the stored record; resubmission must fail without
	// overwriting.
	if err := persister.Set(JoinPath("Specs", specID, "Data"), []byte("tampered")); err != nil {
		t.Fatalf("Tamper write failed: %v", err)
	}
	_, err = specStore.Store(runStore, data, "yaml")
	serr, ok := err.(*Error)
	if !ok || serr.Reason != LogicError {
		t.Fatalf("Expected a LOGIC_ERROR, got %v", err)
	}
	storedData, _ := persister.Get(JoinPath("Specs", specID, "Data"))
	if string(storedData) != "tampered" {
		t.Fatal("Mismatch handling must not overwrite the stored record")
	}
}

func TestSpecStoreRecover(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)

	dataA := []byte("spec-a")
	dataShared := []byte("spec-shared")
	if _, err := specStore.Store(NewStateStore(persister, "svc-a"), dataA, "yaml"); err != nil {
		t.Fatalf("Store svc-a failed: %v", err)
	}
	if _, err := specStore.Store(NewStateStore(persister, "svc-b"), dataShared, "yaml"); err != nil {
		t.Fatalf("Store svc-b failed: %v", err)
	}
	if _, err := specStore.Store(NewStateStore(persister, "svc-c"), dataShared, "yaml"); err != nil {
		t.Fatalf("Store svc-c failed: %v", err)
	}

	recovered, err := specStore.RecoverSpecs()
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if len(recovered) != 3 {
		t.Fatalf("Expected 3 recovered services, got %d", len(recovered))
	}
	byName := map[string]RecoveredSpec{}
	for _, r := range recovered {
		byName[r.ServiceName] = r
	}
	if string(byName["svc-a"].Data) != "spec-a" || byName["svc-a"].Type != "yaml" {
		t.Fatalf("svc-a recovered wrong: %+v", byName["svc-a"])
	}
	if byName["svc-b"].SpecID != byName["svc-c"].SpecID {
		t.Fatal("Shared submissions should recover with the same spec id")
	}
}

func TestSpecStoreRecoverAggregatesErrors(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)

	// svc-good is fine; svc-bad has a namespace but no spec-id property.
	if _, err := specStore.Store(NewStateStore(persister, "svc-good"), []byte("ok"), "yaml"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := NewStateStore(persister, "svc-bad").StoreProperty("unrelated", []byte("x")); err != nil {
		t.Fatalf("Setup write failed: %v", err)
	}

	_, err := specStore.RecoverSpecs()
	serr, ok := err.(*Error)
	if !ok || serr.Reason != LogicError {
		t.Fatalf("Expected aggregate LOGIC_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "svc-bad") {
		t.Fatalf("Aggregate should name the damaged service: %v", err)
	}
}

func TestSpecStoreRecoverDanglingSpecReference(t *testing.T) {
	persister := MakeMemPersister()
	specStore := NewSpecStore(persister)

	specID, err := specStore.Store(NewStateStore(persister, "svc-a"), []byte("data"), "yaml")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := persister.Delete(JoinPath("Specs", specID, "Data")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = specStore.RecoverSpecs()
	serr, ok := err.(*Error)
	if !ok || serr.Reason != LogicError {
		t.Fatalf("Expected LOGIC_ERROR for dangling spec reference, got %v", err)
	}
}
