package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/roach88/ridcache/internal/registry"
)

// Metadata keys written by sync runs.
const (
	MetaBuildDate     = "build_date"
	MetaBuildMethod   = "build_method"
	MetaTotalRecords  = "total_records"
	MetaExactCount    = "exact_serials_count"
	MetaRangeCount    = "serial_ranges_count"
	MetaLastSyncDate  = "last_sync_date"
	MetaLastSyncRunID = "last_sync_run_id"
)

// docDescription is the description stored for every registry record; the
// catalogue carries Remote ID declarations only.
const docDescription = "Remote ID (RID)"

// ErrSyncInProgress is returned when another sync holds the store lock.
var ErrSyncInProgress = errors.New("another sync is already running against this store")

// ErrNoDatabase is returned by Update when the store file does not exist
// yet; incremental update never creates a store.
var ErrNoDatabase = errors.New("database not found, run a full build first")

// Config holds tunables for sync runs. Zero values select defaults.
type Config struct {
	// PageSize is the catalogue listing page size during full build.
	PageSize int

	// UpdateCount is how many recent records an incremental run examines.
	UpdateCount int

	// Throttle is the fixed delay enforced before every per-record
	// serials call and between listing pages.
	Throttle time.Duration
}

// Defaults mirrored from the upstream's documented limits.
const (
	DefaultPageSize    = 100
	DefaultUpdateCount = 50
	DefaultThrottle    = 5 * time.Second
)

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.UpdateCount <= 0 {
		c.UpdateCount = DefaultUpdateCount
	}
	if c.Throttle <= 0 {
		c.Throttle = DefaultThrottle
	}
	return c
}

// Syncer runs full builds and incremental updates against one registry
// client. It is not safe for concurrent use; the file lock enforces that
// across processes too.
type Syncer struct {
	client registry.Client
	cfg    Config
	logger *slog.Logger

	// Injectable for tests.
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	newRunID func() string
}

// New creates a Syncer.
func New(client registry.Client, cfg Config, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:   client,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
		newRunID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// acquireLock takes the exclusive sync lock for a store path. The lock
// file sits next to the database so concurrent runs in separate processes
// collide on it.
func (s *Syncer) acquireLock(dbPath string) (*flock.Flock, error) {
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !locked {
		return nil, ErrSyncInProgress
	}
	return lock, nil
}

func releaseLock(lock *flock.Flock, logger *slog.Logger) {
	if err := lock.Unlock(); err != nil {
		logger.Warn("failed to release sync lock", "path", lock.Path(), "error", err)
	}
}

// throttle enforces the fixed inter-call delay, honoring cancellation.
func (s *Syncer) throttle(ctx context.Context) error {
	return s.sleep(ctx, s.cfg.Throttle)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// timestampBefore reports whether a sorts strictly before b. Registry
// timestamps are RFC 3339; when either side fails to parse, byte
// comparison is the fallback (correct for identically formatted strings).
func timestampBefore(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

// timestampAfter reports whether a sorts strictly after b.
func timestampAfter(a, b string) bool {
	return timestampBefore(b, a)
}
