package syncengine

import (
	"path/filepath"
	"testing"
)

func TestCheckpoint_MissingFileMeansFirstRun(t *testing.T) {
	cp, err := NewCheckpoint(filepath.Join(t.TempDir(), "checkpoint"))
	if err != nil {
		t.Fatalf("new checkpoint: %v", err)
	}

	got, err := cp.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty checkpoint, got %q", got)
	}
}

func TestCheckpoint_SaveLoadRoundTrip(t *testing.T) {
	cp, err := NewCheckpoint(filepath.Join(t.TempDir(), "checkpoint"))
	if err != nil {
		t.Fatalf("new checkpoint: %v", err)
	}

	if err := cp.Save("1724500000.00042"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := cp.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "1724500000.00042" {
		t.Fatalf("round trip mismatch: %q", got)
	}

	// Overwrite moves forward.
	if err := cp.Save("1724500000.00055"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = cp.Load()
	if got != "1724500000.00055" {
		t.Fatalf("expected new value, got %q", got)
	}
}

func TestCheckpoint_RejectsEmptySave(t *testing.T) {
	cp, err := NewCheckpoint(filepath.Join(t.TempDir(), "checkpoint"))
	if err != nil {
		t.Fatalf("new checkpoint: %v", err)
	}
	if err := cp.Save(""); err == nil {
		t.Fatalf("expected error for empty checkpoint value")
	}
}

func TestCheckpoint_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "checkpoint")
	cp, err := NewCheckpoint(path)
	if err != nil {
		t.Fatalf("new checkpoint: %v", err)
	}
	if err := cp.Save("x1"); err != nil {
		t.Fatalf("save into created dir: %v", err)
	}
}
