package resolve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/ridcache/internal/model"
	"github.com/roach88/ridcache/internal/registry"
)

// Store is the subset of the persistent store the cascade touches.
// Satisfied by *store.Store.
type Store interface {
	RangeScanner
	FindExact(ctx context.Context, serial string) (model.ExactSerial, bool, error)
	UpsertExact(ctx context.Context, rec model.ExactSerial) error
}

// Options controls the optional stages of the cascade.
type Options struct {
	// AllowRemoteFallback enables the live registry query when the local
	// cache misses.
	AllowRemoteFallback bool

	// CacheRemoteResult writes a remote hit back into the exact table.
	// Only meaningful together with AllowRemoteFallback.
	CacheRemoteResult bool
}

// Resolution is the outcome of one resolve call.
type Resolution struct {
	model.Lookup

	// CacheWriteErr is set when a remote hit could not be written back to
	// the local store. The lookup itself is still valid; this is a
	// warning, not a failure.
	CacheWriteErr error
}

// Resolver orchestrates the cascade over a store, a range matcher, and the
// registry client.
type Resolver struct {
	store   Store
	matcher RangeMatcher
	client  registry.Client
	logger  *slog.Logger

	// now stamps cache writes; overridable in tests.
	now func() time.Time
}

// New creates a Resolver. client may be nil when remote fallback will never
// be requested.
func New(st Store, client registry.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:   st,
		matcher: NewLinearMatcher(st),
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve runs the cascade for one serial.
//
// An empty or whitespace-only serial short-circuits to a miss without
// touching the store or the network. Store failures on the local stages
// are fatal and returned; remote failures on the fallback stage are
// swallowed into a miss.
func (r *Resolver) Resolve(ctx context.Context, serial string, opts Options) (Resolution, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return Resolution{Lookup: model.NotFound(serial)}, nil
	}

	// Stage 1: exact match.
	exact, found, err := r.store.FindExact(ctx, serial)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		return Resolution{Lookup: model.Lookup{
			Found:        true,
			SerialNumber: serial,
			TrackingID:   exact.TrackingID,
			Description:  exact.Description,
			Status:       exact.Status,
			Make:         exact.Make,
			Model:        exact.Model,
			MfrSerial:    exact.MfrSerial,
			Source:       model.SourceLocal,
		}}, nil
	}

	// Stage 2: range match.
	rng, found, err := r.matcher.Match(ctx, serial)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		return Resolution{Lookup: model.Lookup{
			Found:        true,
			SerialNumber: serial,
			TrackingID:   rng.TrackingID,
			Description:  rng.Description,
			Status:       rng.Status,
			Make:         rng.Make,
			Model:        rng.Model,
			MfrSerial:    rng.MfrSerial,
			Source:       model.SourceLocal,
		}}, nil
	}

	// Stage 3: remote fallback, best effort.
	if !opts.AllowRemoteFallback || r.client == nil {
		return Resolution{Lookup: model.NotFound(serial)}, nil
	}

	matches, err := r.client.FindBySerial(ctx, serial)
	if err != nil {
		// Registry availability is not guaranteed; a transport failure
		// is a miss, not an error.
		r.logger.Debug("remote fallback failed", "serial", serial, "error", err)
		return Resolution{Lookup: model.NotFound(serial)}, nil
	}
	if len(matches) == 0 {
		return Resolution{Lookup: model.NotFound(serial)}, nil
	}

	// Items arrive most-recently-updated first; take the first.
	match := matches[0]
	res := Resolution{Lookup: model.Lookup{
		Found:        true,
		SerialNumber: serial,
		TrackingID:   match.TrackingNumber,
		Description:  strings.ToUpper(match.DocType),
		Status:       match.Status,
		Make:         match.MakeName,
		Model:        match.ModelName,
		MfrSerial:    serial,
		Source:       model.SourceRemote,
	}}

	// Stage 4: opportunistic cache write. Failure does not change the
	// result but is surfaced as a warning.
	if opts.CacheRemoteResult {
		rec := model.ExactSerial{
			SerialNumber: serial,
			TrackingID:   match.TrackingNumber,
			Description:  res.Description,
			Status:       match.Status,
			Make:         match.MakeName,
			Model:        match.ModelName,
			MfrSerial:    serial,
			SyncedAt:     r.now().UTC().Format(time.RFC3339),
			UpdatedAt:    match.UpdatedAt,
		}
		if err := r.store.UpsertExact(ctx, rec); err != nil {
			r.logger.Warn("failed to cache remote result", "serial", serial, "error", err)
			res.CacheWriteErr = err
		}
	}

	return res, nil
}
