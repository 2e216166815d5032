package core

import (
	"encoding/json"
	"testing"

	"dgc-processor/internal/statetest"
)

func TestParticipantRoundTrip(t *testing.T) {
	store := statetest.NewStore()
	a := NewAccessor(store)

	if err := a.SetParticipant(Participant{PublicKey: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("SetParticipant: %v", err)
	}

	got, err := a.GetParticipant("alice")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got == nil || got.Name != "Alice" {
		t.Fatalf("GetParticipant returned %+v", got)
	}
}

func TestGetParticipantMissingReturnsNilNotError(t *testing.T) {
	store := statetest.NewStore()
	a := NewAccessor(store)

	got, err := a.GetParticipant("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

// TestAccessorFindsEntryWithinContainer exercises the reason containers hold
// a slice rather than a single record: a hash-prefix address can in
// principle be shared by more than one natural key, so the accessor must
// locate the matching entry within the container rather than assuming one
// entry per address.
func TestAccessorFindsEntryWithinContainer(t *testing.T) {
	store := statetest.NewStore()
	a := NewAccessor(store)

	if err := a.SetParticipant(Participant{PublicKey: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("SetParticipant alice: %v", err)
	}
	if err := a.SetParticipant(Participant{PublicKey: "bob", Name: "Bob"}); err != nil {
		t.Fatalf("SetParticipant bob: %v", err)
	}

	alice, err := a.GetParticipant("alice")
	if err != nil || alice == nil || alice.Name != "Alice" {
		t.Fatalf("GetParticipant alice: %+v, %v", alice, err)
	}
	bob, err := a.GetParticipant("bob")
	if err != nil || bob == nil || bob.Name != "Bob" {
		t.Fatalf("GetParticipant bob: %+v, %v", bob, err)
	}

	// Simulate a hash-prefix collision: a second natural key sharing alice's
	// address, sorted ahead of her in the container.
	shared, err := json.Marshal([]Participant{{PublicKey: "aaron", Name: "Aaron"}, {PublicKey: "alice", Name: "Alice"}})
	if err != nil {
		t.Fatalf("marshal container: %v", err)
	}
	if err := store.SetState(map[string][]byte{ParticipantAddress("alice"): shared}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	alice, err = a.GetParticipant("alice")
	if err != nil || alice == nil || alice.Name != "Alice" {
		t.Fatalf("GetParticipant alice from shared container: %+v, %v", alice, err)
	}
}

func TestSetParticipantUpsertsByPublicKey(t *testing.T) {
	store := statetest.NewStore()
	a := NewAccessor(store)

	if err := a.SetParticipant(Participant{PublicKey: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := a.SetParticipant(Participant{PublicKey: "alice", Name: "Alice Updated"}); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, err := a.GetParticipant("alice")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got.Name != "Alice Updated" {
		t.Fatalf("got name %q, want update to have replaced the entry", got.Name)
	}
}
