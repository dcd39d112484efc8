package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileSuffix = ".ctx.json"

// FileStore keeps one JSON file per key under a cache directory. Simple and
// inspectable: an operator can cat a context mid-incident. Writes go through
// a temp file + rename so a crash mid-write cannot leave a torn read for the
// next process.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("contextstore: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("contextstore: create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(_ context.Context, campaignID, phone string, cc CallContext) error {
	payload, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("contextstore: encode context: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "put-*")
	if err != nil {
		return fmt.Errorf("contextstore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("contextstore: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("contextstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path(campaignID, phone)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("contextstore: rename: %w", err)
	}
	return nil
}

func (s *FileStore) TakeAndDelete(_ context.Context, campaignID, phone string) (CallContext, bool, error) {
	p := s.path(campaignID, phone)
	payload, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return CallContext{}, false, nil
	}
	if err != nil {
		return CallContext{}, false, fmt.Errorf("contextstore: read: %w", err)
	}

	var cc CallContext
	if err := json.Unmarshal(payload, &cc); err != nil {
		// A corrupt entry is as good as absent; remove it so it cannot
		// poison the next lookup.
		_ = os.Remove(p)
		return CallContext{}, false, nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return CallContext{}, false, fmt.Errorf("contextstore: remove: %w", err)
	}
	return cc, true, nil
}

func (s *FileStore) SweepExpired(_ context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("contextstore: read dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *FileStore) path(campaignID, phone string) string {
	return filepath.Join(s.dir, safeKey(campaignID)+"_"+safeKey(phone)+fileSuffix)
}

// safeKey keeps key material filesystem-safe. Campaign IDs and phone numbers
// are operator-controlled, so this is about path traversal, not collisions.
func safeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
