package syncengine

import "time"

// CallLogRecord is one completed call as written by the telephony platform.
// Read-only to this system; rows are never mutated or deleted here.
type CallLogRecord struct {
	UniqueID        string    `json:"uniqueid" db:"uniqueid"`
	LeadID          int64     `json:"lead_id" db:"lead_id"`
	ListID          int64     `json:"list_id" db:"list_id"`
	CampaignID      string    `json:"campaign_id" db:"campaign_id"`
	CallDate        time.Time `json:"call_date" db:"call_date"`
	StartEpoch      int64     `json:"start_epoch" db:"start_epoch"`
	EndEpoch        int64     `json:"end_epoch" db:"end_epoch"`
	DurationSeconds int       `json:"length_in_sec" db:"length_in_sec"`
	Status          string    `json:"status" db:"status"`
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	AgentID         string    `json:"user" db:"user"`
	TermReason      string    `json:"term_reason" db:"term_reason"`
	CalledCount     int       `json:"called_count" db:"called_count"`
}

// RunReport summarizes one engine pass for logs and the ops surface.
type RunReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	// Skipped means another pass held the run lock; nothing was done.
	Skipped bool `json:"skipped"`

	Fetched   int `json:"fetched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// LastUniqueID is the checkpoint written by this pass, empty when no
	// rows were fetched.
	LastUniqueID string `json:"last_unique_id,omitempty"`

	// MorePending flags a full batch: the next scheduled pass will continue
	// immediately instead of idling.
	MorePending bool `json:"more_pending"`
}
