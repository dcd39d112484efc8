package syncengine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DeadLetterEntry records a row that failed to report, for manual or async
// re-drive. The checkpoint intentionally advances past failures, so this log
// is the only trace of them.
type DeadLetterEntry struct {
	UniqueID   string    `json:"uniqueid"`
	CampaignID string    `json:"campaign_id"`
	Phone      string    `json:"phone"`
	Error      string    `json:"error"`
	FailedAt   time.Time `json:"failed_at"`
}

// DeadLetterLog appends JSONL entries to a file. A nil log disables the
// feature; append failures are reported but must never abort a sync pass.
type DeadLetterLog struct {
	path string
}

func NewDeadLetterLog(path string) (*DeadLetterLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("syncengine: create dead-letter dir: %w", err)
	}
	return &DeadLetterLog{path: path}, nil
}

func (l *DeadLetterLog) Append(entry DeadLetterEntry) error {
	if l == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("syncengine: encode dead-letter entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("syncengine: open dead-letter log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("syncengine: append dead-letter entry: %w", err)
	}
	return nil
}
