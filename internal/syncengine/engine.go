package syncengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"did-optimizer/internal/reporter"
	"did-optimizer/pkg/logger"

	"github.com/google/uuid"
)

// Reporter is the per-row delivery path; satisfied by reporter.Service.
type Reporter interface {
	Report(ctx context.Context, req reporter.Request) error
}

// Engine tails the call-log table and forwards completed calls upstream.
// One linear pass per Run invocation:
//
//	lock → load checkpoint → fetch batch → per-row report → advance checkpoint
//
// A fetch error aborts the pass with the checkpoint untouched, so the next
// scheduled run retries the same window. Row errors are isolated: counted,
// dead-lettered, and stepped over; the checkpoint advances past them.
type Engine struct {
	repo       CallLogRepo
	rep        Reporter
	checkpoint *Checkpoint
	locker     RunLocker
	deadletter *DeadLetterLog
	batchSize  int

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewEngine(repo CallLogRepo, rep Reporter, cp *Checkpoint, locker RunLocker, dl *DeadLetterLog, batchSize int) (*Engine, error) {
	if repo == nil || rep == nil || cp == nil {
		return nil, errors.New("syncengine: repo, reporter and checkpoint are required")
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Engine{
		repo:       repo,
		rep:        rep,
		checkpoint: cp,
		locker:     locker,
		deadletter: dl,
		batchSize:  batchSize,
		clock:      time.Now,
	}, nil
}

// Run executes one pass. The returned error is fatal for the pass (lock,
// checkpoint or fetch trouble); individual row failures are only reflected
// in the report.
func (e *Engine) Run(ctx context.Context) (RunReport, error) {
	now := e.clock()
	report := RunReport{RunID: uuid.NewString(), StartedAt: now}
	log := logger.From(ctx).With("run_id", report.RunID)

	if e.locker != nil {
		ok, err := e.locker.Acquire(ctx, report.RunID)
		if err != nil {
			return report, fmt.Errorf("syncengine: acquire run lock: %w", err)
		}
		if !ok {
			report.Skipped = true
			log.Info("sync pass skipped, lock held by another run")
			return report, nil
		}
		defer func() {
			if err := e.locker.Release(ctx, report.RunID); err != nil {
				log.Warn("run lock release failed", "err", err)
			}
		}()
	}

	last, err := e.checkpoint.Load()
	if err != nil {
		return report, err
	}

	since := startOfDay(now)
	rows, err := e.repo.FetchAfter(ctx, last, since, e.batchSize)
	if err != nil {
		// Checkpoint untouched: the next run retries the same window.
		return report, err
	}
	report.Fetched = len(rows)
	if len(rows) == 0 {
		log.Info("sync pass found no new rows", "checkpoint", last)
		return report, nil
	}

	lastAttempted := ""
	for _, rec := range rows {
		if ctx.Err() != nil {
			log.Warn("sync pass interrupted mid-batch", "attempted", report.Succeeded+report.Failed)
			break
		}
		lastAttempted = rec.UniqueID

		err := e.rep.Report(ctx, reporter.Request{
			CampaignID:      rec.CampaignID,
			Phone:           rec.PhoneNumber,
			Result:          rec.Status,
			DurationSeconds: rec.DurationSeconds,
			Disposition:     rec.Status,
		})
		if err != nil {
			report.Failed++
			log.Warn("row report failed", "uniqueid", rec.UniqueID, "err", err)
			if dlErr := e.deadletter.Append(DeadLetterEntry{
				UniqueID:   rec.UniqueID,
				CampaignID: rec.CampaignID,
				Phone:      rec.PhoneNumber,
				Error:      err.Error(),
				FailedAt:   e.clock().UTC(),
			}); dlErr != nil {
				log.Error("dead-letter append failed", "uniqueid", rec.UniqueID, "err", dlErr)
			}
			continue
		}
		report.Succeeded++
	}

	if lastAttempted != "" {
		if err := e.checkpoint.Save(lastAttempted); err != nil {
			return report, err
		}
		report.LastUniqueID = lastAttempted
	}
	report.MorePending = report.Fetched == e.batchSize

	log.Info("sync pass complete",
		"fetched", report.Fetched,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"checkpoint", report.LastUniqueID,
		"more_pending", report.MorePending,
	)
	return report, nil
}

// startOfDay keeps first runs bounded to today's rows instead of scanning
// the table's full history.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
