package syncer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/store"
)

// UpdateOptions bounds one incremental run.
type UpdateOptions struct {
	// Count overrides Config.UpdateCount when positive.
	Count int

	// Since is an explicit cutoff timestamp; only records updated
	// strictly after it are merged. Takes priority over DaysBack and the
	// stored watermark.
	Since string

	// DaysBack derives the cutoff from the current time when positive.
	DaysBack int

	// DryRun classifies and counts without writing anything - no rows,
	// no tombstones, no watermark.
	DryRun bool
}

// Update merges the most recently changed registry records into an
// existing store. The store must already exist; Update never creates one.
func (s *Syncer) Update(ctx context.Context, dbPath string, opts UpdateOptions) (*UpdateReport, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDatabase
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	lock, err := s.acquireLock(dbPath)
	if err != nil {
		return nil, err
	}
	defer releaseLock(lock, s.logger)

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	start := s.now()
	rep := &UpdateReport{RunID: s.newRunID(), DryRun: opts.DryRun}

	cutoff, err := s.resolveCutoff(ctx, st, opts)
	if err != nil {
		return nil, err
	}
	count := opts.Count
	if count <= 0 {
		count = s.cfg.UpdateCount
	}

	s.logger.Info("incremental update starting",
		"db", dbPath, "count", count, "cutoff", cutoff, "dry_run", opts.DryRun)

	records, err := s.client.ListRecords(ctx, count, 0)
	rep.APICalls++
	if err != nil {
		return nil, fmt.Errorf("listing recent records: %w", err)
	}
	records = filterByCutoff(records, cutoff)
	if len(records) == 0 {
		s.logger.Info("no records newer than cutoff")
	}

	syncedAt := s.now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		rep.RecordsChecked++
		s.logger.Debug("checking record",
			"tracking_id", rec.TrackingNumber, "make", rec.MakeName,
			"model", rec.ModelName, "updated_at", rec.UpdatedAt)

		if err := s.throttle(ctx); err != nil {
			return nil, err
		}
		serials, err := s.client.ListSerials(ctx, rec.TrackingNumber)
		rep.APICalls++
		if err != nil {
			s.logger.Warn("serial fetch failed, skipping record",
				"tracking_id", rec.TrackingNumber, "error", err)
			rep.Errors++
			continue
		}
		if len(serials) == 0 {
			// An empty snapshot is indistinguishable from an upstream
			// glitch; skip rather than tombstoning the whole record.
			s.logger.Warn("no serial data for record", "tracking_id", rec.TrackingNumber)
			rep.Errors++
			continue
		}

		touched, err := s.mergeRecord(ctx, st, rec, serials, syncedAt, opts.DryRun, rep)
		if err != nil {
			return nil, err
		}
		if touched {
			rep.RecordsUpdated++
		}
	}

	if !opts.DryRun {
		if err := st.SetMetadata(ctx, MetaLastSyncDate, syncedAt); err != nil {
			return nil, err
		}
		if err := st.SetMetadata(ctx, MetaLastSyncRunID, rep.RunID); err != nil {
			return nil, err
		}
	}

	rep.Duration = s.now().Sub(start)
	s.logger.Info("incremental update complete",
		"checked", rep.RecordsChecked, "added", rep.ExactsAdded+rep.RangesAdded,
		"updated", rep.ExactsUpdated+rep.RangesUpdated, "stale", rep.Stale,
		"tombstoned", rep.Removed, "errors", rep.Errors, "dry_run", opts.DryRun)
	return rep, nil
}

// resolveCutoff picks the update cutoff in priority order: explicit Since,
// derived DaysBack, stored watermark, none. An empty cutoff means the
// first-ever incremental run processes whatever the page returns.
func (s *Syncer) resolveCutoff(ctx context.Context, st *store.Store, opts UpdateOptions) (string, error) {
	if opts.Since != "" {
		return opts.Since, nil
	}
	if opts.DaysBack > 0 {
		return s.now().UTC().AddDate(0, 0, -opts.DaysBack).Format(time.RFC3339), nil
	}
	watermark, found, err := st.GetMetadata(ctx, MetaLastSyncDate)
	if err != nil {
		return "", err
	}
	if found {
		s.logger.Info("using last sync watermark", "cutoff", watermark)
		return watermark, nil
	}
	s.logger.Info("no previous sync recorded, processing the full page")
	return "", nil
}

func filterByCutoff(records []registry.Record, cutoff string) []registry.Record {
	if cutoff == "" {
		return records
	}
	filtered := records[:0]
	for _, rec := range records {
		if rec.UpdatedAt != "" && timestampAfter(rec.UpdatedAt, cutoff) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
