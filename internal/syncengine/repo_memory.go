package syncengine

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCallLogRepo is a simple in-memory call-log table for tests and early
// development. It mirrors the Postgres repo's filtering contract exactly.
type MemoryCallLogRepo struct {
	mu sync.Mutex

	Rows []CallLogRecord

	// Err, when set, is returned by FetchAfter to simulate a broken DB.
	Err error
}

func NewMemoryCallLogRepo(rows ...CallLogRecord) *MemoryCallLogRepo {
	return &MemoryCallLogRepo{Rows: rows}
}

func (r *MemoryCallLogRepo) FetchAfter(_ context.Context, lastUniqueID string, since time.Time, limit int) ([]CallLogRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]CallLogRecord, 0)
	for _, rec := range r.Rows {
		if rec.Status == "" || rec.DurationSeconds <= 0 {
			continue
		}
		if lastUniqueID != "" {
			if rec.UniqueID <= lastUniqueID {
				continue
			}
		} else if rec.CallDate.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
