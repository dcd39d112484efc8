package syncengine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"did-optimizer/internal/reporter"
)

type fakeReporter struct {
	failPhones map[string]bool
	sent       []reporter.Request
}

func (f *fakeReporter) Report(_ context.Context, req reporter.Request) error {
	if f.failPhones[req.Phone] {
		return errors.New("upstream rejected")
	}
	f.sent = append(f.sent, req)
	return nil
}

func testCheckpoint(t *testing.T) *Checkpoint {
	t.Helper()
	cp, err := NewCheckpoint(filepath.Join(t.TempDir(), "checkpoint"))
	if err != nil {
		t.Fatalf("new checkpoint: %v", err)
	}
	return cp
}

func row(uid, campaign, phone, status string, dur int, date time.Time) CallLogRecord {
	return CallLogRecord{
		UniqueID:        uid,
		CampaignID:      campaign,
		PhoneNumber:     phone,
		Status:          status,
		DurationSeconds: dur,
		CallDate:        date,
	}
}

func TestRun_ProcessesEligibleRowsAndAdvancesCheckpoint(t *testing.T) {
	today := time.Now()
	repo := NewMemoryCallLogRepo(
		row("u1", "C1", "5550001", "SALE", 60, today),
		row("u2", "C1", "5550002", "NI", 30, today),
		row("u3", "C2", "5550003", "DROP", 10, today),
	)
	rep := &fakeReporter{}
	cp := testCheckpoint(t)
	eng, err := NewEngine(repo, rep, cp, nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 3 || report.Succeeded != 3 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.LastUniqueID != "u3" {
		t.Fatalf("expected checkpoint u3, got %q", report.LastUniqueID)
	}
	if report.MorePending {
		t.Fatalf("partial batch must not flag more pending")
	}

	saved, _ := cp.Load()
	if saved != "u3" {
		t.Fatalf("expected persisted checkpoint u3, got %q", saved)
	}

	// Rows delivered in ascending uniqueid order.
	if len(rep.sent) != 3 || rep.sent[0].Phone != "5550001" || rep.sent[2].Phone != "5550003" {
		t.Fatalf("unexpected delivery order: %+v", rep.sent)
	}
}

func TestRun_FiltersInProgressAndAbortedDials(t *testing.T) {
	today := time.Now()
	repo := NewMemoryCallLogRepo(
		row("u1", "C1", "5550001", "", 60, today),     // no status: in progress
		row("u2", "C1", "5550002", "DROP", 0, today),  // zero duration: aborted
		row("u3", "C1", "5550003", "SALE", 45, today), // eligible
	)
	rep := &fakeReporter{}
	eng, err := NewEngine(repo, rep, testCheckpoint(t), nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 1 || len(rep.sent) != 1 || rep.sent[0].Phone != "5550003" {
		t.Fatalf("filter failed: report=%+v sent=%+v", report, rep.sent)
	}
}

func TestRun_RowFailuresDoNotAbortAndCheckpointStillAdvances(t *testing.T) {
	today := time.Now()
	repo := NewMemoryCallLogRepo(
		row("u1", "C1", "5550001", "SALE", 60, today),
		row("u2", "C1", "5550002", "NI", 30, today),
		row("u3", "C1", "5550003", "SALE", 90, today),
	)
	rep := &fakeReporter{failPhones: map[string]bool{"5550002": true}}
	cp := testCheckpoint(t)
	dlPath := filepath.Join(t.TempDir(), "deadletter.jsonl")
	dl, err := NewDeadLetterLog(dlPath)
	if err != nil {
		t.Fatalf("new dead letter: %v", err)
	}
	eng, err := NewEngine(repo, rep, cp, nil, dl, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	// Checkpoint advances past the poison row on purpose.
	if saved, _ := cp.Load(); saved != "u3" {
		t.Fatalf("expected checkpoint u3 despite row failure, got %q", saved)
	}

	// Failed row lands in the dead-letter log.
	f, err := os.Open(dlPath)
	if err != nil {
		t.Fatalf("open dead letter: %v", err)
	}
	defer f.Close()
	var entries []DeadLetterEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e DeadLetterEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad dead-letter line: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 1 || entries[0].UniqueID != "u2" {
		t.Fatalf("expected one dead-letter entry for u2, got %+v", entries)
	}
}

func TestRun_FetchErrorLeavesCheckpointUntouched(t *testing.T) {
	repo := NewMemoryCallLogRepo()
	repo.Err = errors.New("db unreachable")
	cp := testCheckpoint(t)
	if err := cp.Save("u5"); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}
	eng, err := NewEngine(repo, &fakeReporter{}, cp, nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatalf("expected fatal run error")
	}
	if saved, _ := cp.Load(); saved != "u5" {
		t.Fatalf("checkpoint must not move on fetch error, got %q", saved)
	}
}

func TestRun_CrashBeforeAdvanceRefetchesSameWindow(t *testing.T) {
	// Two engines sharing a checkpoint: the first "crashes" (its checkpoint
	// write never happens because we use a fresh, never-saved checkpoint
	// state), the second must re-fetch the same rows. At-least-once, never
	// skipping.
	today := time.Now()
	rows := []CallLogRecord{
		row("u1", "C1", "5550001", "SALE", 60, today),
		row("u2", "C1", "5550002", "NI", 30, today),
		row("u3", "C1", "5550003", "SALE", 90, today),
		row("u4", "C1", "5550004", "NI", 20, today),
		row("u5", "C1", "5550005", "SALE", 70, today),
	}
	repo := NewMemoryCallLogRepo(rows...)
	cp := testCheckpoint(t)

	// First pass fetched u1..u5 but the process died before the checkpoint
	// write: nothing was saved, so Load still reports first-run.
	if saved, _ := cp.Load(); saved != "" {
		t.Fatalf("precondition: checkpoint must be unset")
	}

	rep := &fakeReporter{}
	eng, err := NewEngine(repo, rep, cp, nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 5 {
		t.Fatalf("expected full re-fetch of u1..u5, got %d", report.Fetched)
	}
	if saved, _ := cp.Load(); saved != "u5" {
		t.Fatalf("expected checkpoint u5, got %q", saved)
	}
}

func TestRun_CheckpointIsMonotonic(t *testing.T) {
	today := time.Now()
	repo := NewMemoryCallLogRepo(
		row("u1", "C1", "5550001", "SALE", 60, today),
		row("u2", "C1", "5550002", "NI", 30, today),
	)
	cp := testCheckpoint(t)
	eng, err := NewEngine(repo, &fakeReporter{}, cp, nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := cp.Load()
	if first != "u2" {
		t.Fatalf("expected u2, got %q", first)
	}

	// Second run with no new rows: checkpoint must not regress.
	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Fetched != 0 {
		t.Fatalf("expected no rows, got %d", report.Fetched)
	}
	if saved, _ := cp.Load(); saved != "u2" {
		t.Fatalf("checkpoint regressed to %q", saved)
	}

	// New rows only move it forward.
	repo.Rows = append(repo.Rows, row("u9", "C1", "5550009", "SALE", 40, today))
	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if saved, _ := cp.Load(); saved != "u9" {
		t.Fatalf("expected u9, got %q", saved)
	}
}

func TestRun_FullBatchFlagsMorePending(t *testing.T) {
	today := time.Now()
	var rows []CallLogRecord
	for i := 1; i <= 500; i++ {
		rows = append(rows, row(fmt.Sprintf("u%04d", i), "C1", fmt.Sprintf("555%04d", i), "SALE", 30, today))
	}
	repo := NewMemoryCallLogRepo(rows...)
	cp := testCheckpoint(t)
	eng, err := NewEngine(repo, &fakeReporter{}, cp, nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 500 || report.Succeeded != 500 {
		t.Fatalf("expected 500 processed, got %+v", report)
	}
	if report.LastUniqueID != "u0500" {
		t.Fatalf("expected checkpoint on the 500th row, got %q", report.LastUniqueID)
	}
	if !report.MorePending {
		t.Fatalf("full batch must flag more pending")
	}
}

func TestRun_FirstRunOnlyFetchesTodaysRows(t *testing.T) {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	repo := NewMemoryCallLogRepo(
		row("u1", "C1", "5550001", "SALE", 60, yesterday),
		row("u2", "C1", "5550002", "SALE", 30, now),
	)
	rep := &fakeReporter{}
	eng, err := NewEngine(repo, rep, testCheckpoint(t), nil, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 1 || rep.sent[0].Phone != "5550002" {
		t.Fatalf("first run must start from today: %+v", report)
	}
}

type fakeLocker struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLocker) Acquire(context.Context, string) (bool, error) {
	l.acquired++
	return !l.held, nil
}

func (l *fakeLocker) Release(context.Context, string) error {
	l.released++
	return nil
}

func TestRun_SkipsWhenLockHeld(t *testing.T) {
	repo := NewMemoryCallLogRepo(row("u1", "C1", "5550001", "SALE", 60, time.Now()))
	lock := &fakeLocker{held: true}
	eng, err := NewEngine(repo, &fakeReporter{}, testCheckpoint(t), lock, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Skipped || report.Fetched != 0 {
		t.Fatalf("expected skipped pass, got %+v", report)
	}
	if lock.released != 0 {
		t.Fatalf("must not release a lock it never held")
	}
}

func TestRun_ReleasesLockAfterPass(t *testing.T) {
	repo := NewMemoryCallLogRepo(row("u1", "C1", "5550001", "SALE", 60, time.Now()))
	lock := &fakeLocker{}
	eng, err := NewEngine(repo, &fakeReporter{}, testCheckpoint(t), lock, nil, 500)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if lock.acquired != 1 || lock.released != 1 {
		t.Fatalf("expected acquire+release, got %+v", lock)
	}
}
