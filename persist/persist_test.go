package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveRestoreRoundTrip(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "positions.json"), 10)

	store.Save("movie:603", 42.5, 1.25)

	rec, ok := store.Restore("movie:603")
	if !ok {
		t.Fatal("Restore() returned absent for saved key")
	}
	if rec.Position != 42.5 {
		t.Errorf("Restore() position = %v, want 42.5", rec.Position)
	}
	if rec.Rate != 1.25 {
		t.Errorf("Restore() rate = %v, want 1.25", rec.Rate)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "positions.json"), 10)

	store.Save("tv:100:s2e5", 10, 1)
	store.Save("tv:100:s2e5", 300.5, 1.5)

	rec, ok := store.Restore("tv:100:s2e5")
	if !ok {
		t.Fatal("Restore() returned absent")
	}
	if rec.Position != 300.5 || rec.Rate != 1.5 {
		t.Errorf("Restore() = {%v %v}, want latest write {300.5 1.5}", rec.Position, rec.Rate)
	}
}

func TestRestoreAbsentKey(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "positions.json"), 10)

	if _, ok := store.Restore("movie:999"); ok {
		t.Error("Restore() reported a record for an unknown key")
	}
	if _, ok := store.Restore(""); ok {
		t.Error("Restore() reported a record for the empty key")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")

	first := Open(path, 10)
	first.Save("movie:603", 42.5, 1.25)
	first.Flush()

	second := Open(path, 10)
	rec, ok := second.Restore("movie:603")
	if !ok {
		t.Fatal("Restore() after reopen returned absent")
	}
	if rec.Position != 42.5 || rec.Rate != 1.25 {
		t.Errorf("Restore() after reopen = {%v %v}, want {42.5 1.25}", rec.Position, rec.Rate)
	}
}

func TestEvictsOldestBeyondCap(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "positions.json"), 3)

	for i := 0; i < 5; i++ {
		store.Save(fmt.Sprintf("movie:%d", i), float64(i), 1)
	}

	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want cap of 3", store.Len())
	}
	if _, ok := store.Restore("movie:0"); ok {
		t.Error("oldest key survived past the cap")
	}
	if _, ok := store.Restore("movie:4"); !ok {
		t.Error("newest key was evicted")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	store := Open(path, 10)
	if store.Len() != 0 {
		t.Errorf("Len() = %d for corrupt file, want 0", store.Len())
	}

	// The store must remain usable afterwards
	store.Save("movie:1", 5, 1)
	if _, ok := store.Restore("movie:1"); !ok {
		t.Error("store unusable after corrupt load")
	}
}

func TestSaveWithUnwritablePathDoesNotPanic(t *testing.T) {
	// Point the store at a path whose parent is a regular file so every
	// flush fails. Save and Flush must still be safe to call.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	store := Open(filepath.Join(blocker, "positions.json"), 10)
	store.Save("movie:1", 12, 1)
	store.Flush()

	if rec, ok := store.Restore("movie:1"); !ok || rec.Position != 12 {
		t.Error("in-memory record lost after failed flush")
	}
}
