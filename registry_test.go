package main

import (
	"errors"
	"testing"
)

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := newRegistry()

	if err := r.register("c1", "Alice"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.register("c1", "Alice again"); !errors.Is(err, errDuplicatePlayer) {
		t.Fatalf("expected errDuplicatePlayer, got %v", err)
	}
	if r.size() != 1 {
		t.Fatalf("expected 1 player, got %d", r.size())
	}
}

func TestRegistrySnapshotKeepsJoinOrder(t *testing.T) {
	r := newRegistry()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if err := r.register("c-"+name, name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	snap := r.snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	for i, want := range []string{"Alice", "Bob", "Carol"} {
		if snap[i].Name != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, snap[i].Name)
		}
	}
}

func TestRegistrySetReadyUnknownConnection(t *testing.T) {
	r := newRegistry()

	if r.setReady("nope") {
		t.Fatal("setReady on an unknown connection should report false")
	}

	_ = r.register("c1", "Alice")
	if !r.setReady("c1") {
		t.Fatal("setReady on a known connection should report true")
	}

	p, _ := r.get("c1")
	if !p.Ready {
		t.Fatal("player should be marked ready")
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := newRegistry()
	_ = r.register("c1", "Alice")
	_ = r.register("c2", "Bob")

	r.remove("c1")
	r.remove("c1")
	r.remove("never-joined")

	if r.size() != 1 {
		t.Fatalf("expected 1 player, got %d", r.size())
	}
	if _, ok := r.get("c2"); !ok {
		t.Fatal("unrelated player should survive removals")
	}
}

func TestRegistryAllReady(t *testing.T) {
	r := newRegistry()

	if r.allReady() {
		t.Fatal("an empty registry must never be all-ready")
	}

	_ = r.register("c1", "Alice")
	_ = r.register("c2", "Bob")
	_ = r.setReady("c1")

	if r.allReady() {
		t.Fatal("not all players are ready yet")
	}

	_ = r.setReady("c2")
	if !r.allReady() {
		t.Fatal("all players are ready")
	}
}
