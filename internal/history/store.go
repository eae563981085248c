package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// ErrCorrupt marks a history file that exists but could not be decoded. Callers treat the
// history as empty.
var ErrCorrupt = errors.New("history file corrupt")

// Store persists the endpoint-name to last-record mapping as a single JSON file.
// There is no locking; a single writer per file is assumed.
type Store struct {
	path string
	now  func() time.Time
}

type Option func(*Store)

func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the full mapping. A missing file yields an empty mapping and no error. A
// malformed file yields an empty mapping and an error wrapping ErrCorrupt.
func (s *Store) Load(ctx context.Context) (types.History, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.History{}, nil
		}
		return types.History{}, fmt.Errorf("read history file %q: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return types.History{}, nil
	}

	var hist types.History
	if err := json.Unmarshal(data, &hist); err != nil {
		return types.History{}, fmt.Errorf("%w: parse %q: %v", ErrCorrupt, s.path, err)
	}
	if hist == nil {
		hist = types.History{}
	}
	return hist, nil
}

// Save replaces the history file with hist.
func (s *Store) Save(ctx context.Context, hist types.History) error {
	if hist == nil {
		hist = types.History{}
	}
	data, err := json.MarshalIndent(hist, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure history dir %q: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp history file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit history file %q: %w", s.path, err)
	}
	return nil
}
