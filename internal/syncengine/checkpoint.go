package syncengine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Checkpoint persists the uniqueid of the most recently attempted call-log
// row. It only ever moves forward; a missing or empty file means "first
// run". Writes go through temp + rename so a crash mid-write cannot corrupt
// the next load.
type Checkpoint struct {
	path string
}

func NewCheckpoint(path string) (*Checkpoint, error) {
	if path == "" {
		return nil, errors.New("syncengine: checkpoint path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("syncengine: create checkpoint dir: %w", err)
	}
	return &Checkpoint{path: path}, nil
}

// Load returns the stored uniqueid, or "" on first run.
func (c *Checkpoint) Load() (string, error) {
	payload, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("syncengine: read checkpoint: %w", err)
	}
	return strings.TrimSpace(string(payload)), nil
}

// Save atomically replaces the checkpoint value.
func (c *Checkpoint) Save(uniqueID string) error {
	if uniqueID == "" {
		return errors.New("syncengine: refusing to save empty checkpoint")
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, "checkpoint-*")
	if err != nil {
		return fmt.Errorf("syncengine: create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(uniqueID + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncengine: write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncengine: close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncengine: rename checkpoint: %w", err)
	}
	return nil
}
