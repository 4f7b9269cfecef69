package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/latte-escape/internal/core"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestGatesRoundTrip(t *testing.T) {
	store := openTest(t)

	gates := map[core.Coord]bool{core.C(8, 8): true, core.C(13, 2): false}
	if err := store.SaveGates("default", "maze", gates); err != nil {
		t.Fatalf("SaveGates() failed: %v", err)
	}

	got, err := store.LoadGates("default", "maze")
	if err != nil {
		t.Fatalf("LoadGates() failed: %v", err)
	}
	if len(got) != 2 || !got[core.C(8, 8)] || got[core.C(13, 2)] {
		t.Errorf("LoadGates() = %v, expected %v", got, gates)
	}

	// Saving again replaces the old overlay.
	if err := store.SaveGates("default", "maze", map[core.Coord]bool{core.C(1, 1): true}); err != nil {
		t.Fatalf("SaveGates() failed: %v", err)
	}
	got, _ = store.LoadGates("default", "maze")
	if len(got) != 1 || !got[core.C(1, 1)] {
		t.Errorf("LoadGates() = %v after replace", got)
	}

	other, _ := store.LoadGates("other", "maze")
	if len(other) != 0 {
		t.Errorf("LoadGates(other slot) = %v, expected empty", other)
	}
}

func TestSwitchesRoundTrip(t *testing.T) {
	store := openTest(t)

	if err := store.SaveSwitches("default", "maze", map[string]bool{"lever1": true, "lever4": false}); err != nil {
		t.Fatalf("SaveSwitches() failed: %v", err)
	}
	got, err := store.LoadSwitches("default", "maze")
	if err != nil {
		t.Fatalf("LoadSwitches() failed: %v", err)
	}
	if len(got) != 2 || !got["lever1"] || got["lever4"] {
		t.Errorf("LoadSwitches() = %v", got)
	}
}

func TestMotionSaves(t *testing.T) {
	store := openTest(t)

	rec, err := store.LoadMotion("default")
	if err != nil || rec != nil {
		t.Fatalf("LoadMotion(empty) = %v, %v, expected nil, nil", rec, err)
	}

	first := MotionRecord{Slot: "default", RoomID: "garden", X: 333.8, Y: 241.3, Facing: "right", Travel: 16}
	if err := store.SaveMotion(first); err != nil {
		t.Fatalf("SaveMotion() failed: %v", err)
	}
	second := MotionRecord{Slot: "default", RoomID: "office", X: 240, Y: 48, Facing: "up", Travel: 20}
	if err := store.SaveMotion(second); err != nil {
		t.Fatalf("SaveMotion() failed: %v", err)
	}
	if err := store.SaveMotion(MotionRecord{Slot: "alt", RoomID: "maze", X: 16, Y: 16, Facing: "down"}); err != nil {
		t.Fatalf("SaveMotion() failed: %v", err)
	}

	rec, err = store.LoadMotion("default")
	if err != nil {
		t.Fatalf("LoadMotion() failed: %v", err)
	}
	if rec.RoomID != "office" || rec.X != 240 || rec.Facing != "up" || rec.Travel != 20 {
		t.Errorf("LoadMotion() = %+v, expected the second save", rec)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	saves, err := store.ListSaves()
	if err != nil {
		t.Fatalf("ListSaves() failed: %v", err)
	}
	if len(saves) != 2 {
		t.Errorf("ListSaves() = %d saves, expected 2", len(saves))
	}
}

func TestClearSaves(t *testing.T) {
	store := openTest(t)

	for _, slot := range []string{"a", "b"} {
		_ = store.SaveMotion(MotionRecord{Slot: slot, RoomID: "maze", Facing: "up"})
		_ = store.SaveGates(slot, "maze", map[core.Coord]bool{core.C(8, 8): true})
		_ = store.SaveSwitches(slot, "maze", map[string]bool{"lever1": true})
	}

	if err := store.ClearSaves("a"); err != nil {
		t.Fatalf("ClearSaves(a) failed: %v", err)
	}
	if rec, _ := store.LoadMotion("a"); rec != nil {
		t.Error("slot a still has a save")
	}
	if gates, _ := store.LoadGates("a", "maze"); len(gates) != 0 {
		t.Error("slot a still has gates")
	}
	if rec, _ := store.LoadMotion("b"); rec == nil {
		t.Error("slot b was cleared")
	}

	if err := store.ClearSaves(""); err != nil {
		t.Fatalf("ClearSaves(all) failed: %v", err)
	}
	if saves, _ := store.ListSaves(); len(saves) != 0 {
		t.Errorf("ListSaves() = %v after clearing all", saves)
	}
	if switches, _ := store.LoadSwitches("b", "maze"); len(switches) != 0 {
		t.Error("slot b still has switches")
	}
}
