package registry

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	r := NewInMemoryRegistry()

	if _, ok := r.Lookup("alice"); ok {
		t.Fatal("lookup on empty registry should miss")
	}

	r.Register("alice", "conn-1")

	connID, ok := r.Lookup("alice")
	if !ok {
		t.Fatal("lookup after register should hit")
	}
	if connID != "conn-1" {
		t.Errorf("expected conn-1, got %s", connID)
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewInMemoryRegistry()

	r.Register("alice", "conn-1")
	r.Register("alice", "conn-2")

	connID, ok := r.Lookup("alice")
	if !ok {
		t.Fatal("lookup should hit")
	}
	if connID != "conn-2" {
		t.Errorf("expected the newer conn-2, got %s", connID)
	}
}

func TestUnregisterRequiresMatchingConn(t *testing.T) {
	r := NewInMemoryRegistry()

	r.Register("alice", "conn-1")
	r.Register("alice", "conn-2") // second overlapping session

	// Disconnect of the superseded connection must not evict the newer
	// session's entry.
	if r.Unregister("alice", "conn-1") {
		t.Error("unregister with a stale conn id should be refused")
	}
	if connID, ok := r.Lookup("alice"); !ok || connID != "conn-2" {
		t.Fatalf("expected conn-2 still registered, got %q ok=%v", connID, ok)
	}

	if !r.Unregister("alice", "conn-2") {
		t.Error("unregister with the current conn id should succeed")
	}
	if _, ok := r.Lookup("alice"); ok {
		t.Error("entry should be gone after matching unregister")
	}
}

func TestUnregisterUnknownUser(t *testing.T) {
	r := NewInMemoryRegistry()

	if r.Unregister("ghost", "conn-1") {
		t.Error("unregister of an unknown user should be a no-op")
	}
}

func TestSnapshot(t *testing.T) {
	r := NewInMemoryRegistry()
	r.Register("alice", "conn-1")
	r.Register("bob", "conn-2")

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap["alice"] != "conn-1" || snap["bob"] != "conn-2" {
		t.Errorf("unexpected snapshot contents: %v", snap)
	}

	// Mutating the snapshot must not touch the registry.
	delete(snap, "alice")
	if _, ok := r.Lookup("alice"); !ok {
		t.Error("snapshot mutation leaked into the registry")
	}
}
