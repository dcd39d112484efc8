package contextstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"did-optimizer/internal/geo"
)

func TestFileStore_PutTakeRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	in := CallContext{
		DIDID:          "42",
		SelectedNumber: "+15551112222",
		AgentID:        "agent7",
		SelectedAt:     time.Now().UTC().Truncate(time.Second),
		Algorithm:      "geo_affinity",
		Location:       geo.Tuple{AreaCode: "415", State: "CA"},
		APIMetadata:    map[string]any{"score": 0.92},
	}
	if err := s.Put(ctx, "TEST001", "4155551234", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, found, err := s.TakeAndDelete(ctx, "TEST001", "4155551234")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if !found {
		t.Fatalf("expected context to be found")
	}
	if out.SelectedNumber != in.SelectedNumber || out.AgentID != in.AgentID || out.Algorithm != in.Algorithm {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
	if !out.SelectedAt.Equal(in.SelectedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", out.SelectedAt, in.SelectedAt)
	}

	// Consumed exactly once: a second take finds nothing.
	_, found, err = s.TakeAndDelete(ctx, "TEST001", "4155551234")
	if err != nil {
		t.Fatalf("second take: %v", err)
	}
	if found {
		t.Fatalf("context must be deleted on first take")
	}
}

func TestFileStore_MissingKeyIsNotAnError(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, found, err := s.TakeAndDelete(context.Background(), "NOPE", "0000000000")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestFileStore_OverwriteIsLastWriteWins(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "C", "555", CallContext{SelectedNumber: "+1first"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "C", "555", CallContext{SelectedNumber: "+1second"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, found, err := s.TakeAndDelete(ctx, "C", "555")
	if err != nil || !found {
		t.Fatalf("take: %v found=%v", err, found)
	}
	if out.SelectedNumber != "+1second" {
		t.Fatalf("expected last write to win, got %q", out.SelectedNumber)
	}
}

func TestFileStore_SweepExpiredRemovesOnlyOldEntries(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "OLD", "111", CallContext{SelectedNumber: "+1old"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "NEW", "222", CallContext{SelectedNumber: "+1new"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Age the first entry past the TTL.
	old := filepath.Join(dir, "OLD_111"+fileSuffix)
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := s.SweepExpired(ctx, time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, found, _ := s.TakeAndDelete(ctx, "OLD", "111"); found {
		t.Fatalf("expired context should be gone")
	}
	if _, found, _ := s.TakeAndDelete(ctx, "NEW", "222"); !found {
		t.Fatalf("fresh context should survive the sweep")
	}
}

func TestFileStore_CorruptEntryTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	p := filepath.Join(dir, "C_555"+fileSuffix)
	if err := os.WriteFile(p, []byte("{torn write"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, found, err := s.TakeAndDelete(context.Background(), "C", "555")
	if err != nil {
		t.Fatalf("corrupt entry must not error: %v", err)
	}
	if found {
		t.Fatalf("corrupt entry must read as absent")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("corrupt entry should be removed")
	}
}

func TestFileStore_KeysAreFilesystemSafe(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "../escape", "+1 (555) 000", CallContext{SelectedNumber: "+1x"}); err != nil {
		t.Fatalf("put with hostile key: %v", err)
	}
	_, found, err := s.TakeAndDelete(ctx, "../escape", "+1 (555) 000")
	if err != nil || !found {
		t.Fatalf("expected sanitized key round trip, err=%v found=%v", err, found)
	}
}
