package syncer

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/roach88/ridcache/internal/model"
	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/store"
)

// FullBuild rebuilds the store at dbPath from the entire registry
// catalogue.
//
// The catalogue is listed completely before the store file is touched, so
// a listing failure leaves any existing database exactly as it was. Once
// listing succeeds the old file is replaced - full build is destructive,
// not additive. Per-record serial fetch failures are counted and skipped;
// store failures abort.
func (s *Syncer) FullBuild(ctx context.Context, dbPath string) (*BuildReport, error) {
	lock, err := s.acquireLock(dbPath)
	if err != nil {
		return nil, err
	}
	defer releaseLock(lock, s.logger)

	start := s.now()
	rep := &BuildReport{RunID: s.newRunID()}

	s.logger.Info("full build starting",
		"db", dbPath, "page_size", s.cfg.PageSize, "throttle", s.cfg.Throttle)

	records, err := s.listCatalogue(ctx, rep)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("registry returned no records, refusing to build an empty store")
	}
	rep.RecordsListed = len(records)
	s.logger.Info("catalogue listed", "records", len(records), "api_calls", rep.APICalls)

	// Listing succeeded; now the rebuild may be destructive.
	if err := removeStoreFiles(dbPath); err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	syncedAt := s.now().UTC().Format(time.RFC3339)
	for i, rec := range records {
		s.logger.Debug("processing record",
			"index", i+1, "total", len(records),
			"tracking_id", rec.TrackingNumber, "make", rec.MakeName, "model", rec.ModelName)
		rep.RecordsProcessed++

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
			continue
		}
		rep.RecordsWithSerials++

		if err := s.insertSerials(ctx, st, rec, serials, syncedAt, rep); err != nil {
			return nil, err
		}
	}

	rep.Duration = s.now().Sub(start)
	if err := s.writeBuildMetadata(ctx, st, rep); err != nil {
		return nil, err
	}

	s.logger.Info("full build complete",
		"exacts", rep.ExactSerials, "ranges", rep.SerialRanges, "errors", rep.Errors)
	return rep, nil
}

// listCatalogue pages through the full publicDOCRev listing. Any page
// failure aborts the build.
func (s *Syncer) listCatalogue(ctx context.Context, rep *BuildReport) ([]registry.Record, error) {
	var all []registry.Record
	for pageIndex := 0; ; pageIndex++ {
		if pageIndex > 0 {
			if err := s.throttle(ctx); err != nil {
				return nil, err
			}
		}
		items, err := s.client.ListRecords(ctx, s.cfg.PageSize, pageIndex)
		rep.APICalls++
		if err != nil {
			return nil, fmt.Errorf("catalogue listing aborted at page %d: %w", pageIndex, err)
		}
		if len(items) == 0 {
			return all, nil
		}
		s.logger.Debug("listed page", "page", pageIndex, "items", len(items), "total", len(all)+len(items))
		all = append(all, items...)
	}
}

// insertSerials parses one record's snapshot and writes every classified
// serial. Parse failures are localized to the item.
func (s *Syncer) insertSerials(ctx context.Context, st *store.Store, rec registry.Record,
	serials []registry.Serial, syncedAt string, rep *BuildReport) error {
	for _, item := range serials {
		parsed, err := model.ParseSerialValue(item.Value)
		if err != nil {
			s.logger.Warn("unparseable serial value, skipping",
				"tracking_id", rec.TrackingNumber, "value", item.Value, "error", err)
			rep.Errors++
			continue
		}

		switch parsed.Kind {
		case model.KindExact:
			err = st.UpsertExact(ctx, model.ExactSerial{
				SerialNumber: parsed.Value,
				TrackingID:   rec.TrackingNumber,
				Description:  docDescription,
				Status:       rec.Status,
				Make:         rec.MakeName,
				Model:        rec.ModelName,
				MfrSerial:    item.MfrSerial,
				SyncedAt:     syncedAt,
				UpdatedAt:    item.UpdatedAt,
			})
			if err == nil {
				rep.ExactSerials++
			}
		case model.KindRange:
			err = st.InsertRange(ctx, model.SerialRange{
				Start:       parsed.Start,
				End:         parsed.End,
				TrackingID:  rec.TrackingNumber,
				Description: docDescription,
				Status:      rec.Status,
				Make:        rec.MakeName,
				Model:       rec.ModelName,
				SyncedAt:    syncedAt,
				UpdatedAt:   item.UpdatedAt,
			})
			if err == nil {
				rep.SerialRanges++
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) writeBuildMetadata(ctx context.Context, st *store.Store, rep *BuildReport) error {
	now := s.now().UTC().Format(time.RFC3339)
	meta := map[string]string{
		MetaBuildDate:     now,
		MetaBuildMethod:   "api",
		MetaTotalRecords:  strconv.Itoa(rep.RecordsListed),
		MetaExactCount:    strconv.Itoa(rep.ExactSerials),
		MetaRangeCount:    strconv.Itoa(rep.SerialRanges),
		MetaLastSyncDate:  now,
		MetaLastSyncRunID: rep.RunID,
	}
	for key, value := range meta {
		if err := st.SetMetadata(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// removeStoreFiles deletes the database and its WAL sidecars, tolerating
// absence.
func removeStoreFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
