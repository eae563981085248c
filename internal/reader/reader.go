package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

const (
	ResponseTimeBase = "response-time"
	UptimeBase       = "uptime"

	// UptimeUnavailable is reported when the snapshot carries no uptime figure.
	UptimeUnavailable = "N/A"
)

var snapshotExtensions = []string{".json", ".yaml", ".yml"}

var (
	ErrSnapshotMissing    = errors.New("status snapshot missing")
	ErrSnapshotInvalid    = errors.New("status snapshot invalid")
	ErrSnapshotUnverified = errors.New("status snapshot signature rejected")
)

// Verifier validates snapshot bytes against a detached signature.
type Verifier interface {
	VerifyBytes(ctx context.Context, data []byte, signaturePath string) error
}

// Snapshot is one endpoint's raw signal together with display metrics.
type Snapshot struct {
	Signal       types.Signal
	ResponseTime string
	Uptime       string
}

type Reader struct {
	verifier Verifier
	sigPath  func(string) string
}

type Option func(*Reader)

// WithVerifier requires every snapshot file to carry a valid signature.
func WithVerifier(v Verifier, signaturePath func(string) string) Option {
	return func(r *Reader) {
		if v != nil && signaturePath != nil {
			r.verifier = v
			r.sigPath = signaturePath
		}
	}
}

func New(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read loads the snapshot for ep according to its configured source.
func (r *Reader) Read(ctx context.Context, ep types.Endpoint) (Snapshot, error) {
	switch ep.Source {
	case types.SourceRecord:
		return r.readRecord(ctx, ep.RecordFile)
	case types.SourceBadges, "":
		return r.readBadges(ctx, ep.DataPath)
	default:
		return Snapshot{}, fmt.Errorf("endpoint %q: unknown source %q", ep.Name, ep.Source)
	}
}

func (r *Reader) readBadges(ctx context.Context, dir string) (Snapshot, error) {
	var responseTime, uptime types.Badge
	if err := r.decodeBase(ctx, dir, ResponseTimeBase, &responseTime); err != nil {
		return Snapshot{}, err
	}
	if err := r.decodeBase(ctx, dir, UptimeBase, &uptime); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Signal:       types.BadgeSignal(responseTime, uptime),
		ResponseTime: ParseResponseTime(responseTime.Message),
		Uptime:       uptime.Message,
	}, nil
}

func (r *Reader) readRecord(ctx context.Context, path string) (Snapshot, error) {
	var rec types.StructuredRecord
	if err := r.decodeFile(ctx, path, &rec); err != nil {
		return Snapshot{}, err
	}
	rt := "0"
	if rec.ResponseTime != nil {
		rt = strconv.FormatFloat(*rec.ResponseTime, 'f', -1, 64)
	}
	return Snapshot{
		Signal:       types.RecordSignal(rec),
		ResponseTime: rt,
		Uptime:       UptimeUnavailable,
	}, nil
}

// decodeBase finds <dir>/<base>.{json,yaml,yml}; the first existing file wins.
func (r *Reader) decodeBase(ctx context.Context, dir, base string, out any) error {
	for _, ext := range snapshotExtensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: stat %q: %v", ErrSnapshotMissing, path, err)
		}
		return r.decodeFile(ctx, path, out)
	}
	return fmt.Errorf("%w: no %s snapshot in %q", ErrSnapshotMissing, base, dir)
}

func (r *Reader) decodeFile(ctx context.Context, path string, out any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: read %q: %v", ErrSnapshotMissing, path, err)
	}
	if r.verifier != nil {
		if err := r.verifier.VerifyBytes(ctx, data, r.sigPath(path)); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrSnapshotUnverified, path, err)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("%w: parse %q: %v", ErrSnapshotInvalid, path, err)
	}
	return nil
}

// ParseResponseTime strips the unit from a response-time badge message ("12737 ms" -> "12737").
func ParseResponseTime(message string) string {
	v := strings.TrimSpace(message)
	v = strings.TrimSpace(strings.TrimSuffix(v, "ms"))
	if v == "" {
		return "0"
	}
	return v
}

// Skippable reports whether err means "skip this endpoint this cycle".
func Skippable(err error) bool {
	return errors.Is(err, ErrSnapshotMissing) ||
		errors.Is(err, ErrSnapshotInvalid) ||
		errors.Is(err, ErrSnapshotUnverified)
}
