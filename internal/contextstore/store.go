package contextstore

import (
	"context"
	"time"

	"did-optimizer/internal/geo"
)

// CallContext correlates a DID selection with the call outcome that arrives
// later. Written once by the selection path, consumed once by the reporting
// path. A second selection for the same (campaign, phone) before the first
// is consumed overwrites it; last-write-wins is accepted behavior.
type CallContext struct {
	DIDID          string         `json:"did_id,omitempty"`
	SelectedNumber string         `json:"selected_number"`
	AgentID        string         `json:"agent_id"`
	SelectedAt     time.Time      `json:"selected_at"`
	Algorithm      string         `json:"algorithm,omitempty"`
	Location       geo.Tuple      `json:"location"`
	APIMetadata    map[string]any `json:"api_metadata,omitempty"`
}

// Store is the keyed correlation store. A missing key on TakeAndDelete is a
// normal condition, not an error: reporting must never be blocked by a
// missing context.
type Store interface {
	Put(ctx context.Context, campaignID, phone string, cc CallContext) error

	// TakeAndDelete reads and removes in one step so a context is consumed
	// at most once. Concurrent takers of the same key are out of scope.
	TakeAndDelete(ctx context.Context, campaignID, phone string) (CallContext, bool, error)

	// SweepExpired removes contexts older than maxAge (orphans from calls
	// that were never reported) and returns how many were removed.
	SweepExpired(ctx context.Context, maxAge time.Duration) (int, error)
}
