package syncer

import (
	"context"

	"github.com/roach88/ridcache/internal/model"
	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/store"
)

// mergeRecord merges one record's serial snapshot into the store.
//
// Existence is keyed on (serial_number, tracking_id) for exacts and
// (start, end, tracking_id) for ranges: existing rows are replaced and
// counted as updated, absent ones inserted and counted as added. A row
// whose incoming registry timestamp is strictly older than the stored one
// is skipped as stale instead of clobbering newer local data. After the
// merge, live rows of this tracking id that no longer appear in the
// snapshot are tombstoned.
//
// In dry-run mode every classification happens identically but nothing is
// written. Returns whether the record contributed any serials.
func (s *Syncer) mergeRecord(ctx context.Context, st *store.Store, rec registry.Record,
	serials []registry.Serial, syncedAt string, dryRun bool, rep *UpdateReport) (bool, error) {

	keepExacts := make(map[string]bool)
	keepRanges := make(map[[2]string]bool)
	touched := false

	for _, item := range serials {
		parsed, err := model.ParseSerialValue(item.Value)
		if err != nil {
			s.logger.Warn("unparseable serial value, skipping",
				"tracking_id", rec.TrackingNumber, "value", item.Value, "error", err)
			rep.Errors++
			continue
		}
		touched = true

		switch parsed.Kind {
		case model.KindExact:
			keepExacts[parsed.Value] = true
			if err := s.mergeExact(ctx, st, rec, item, parsed.Value, syncedAt, dryRun, rep); err != nil {
				return false, err
			}
		case model.KindRange:
			keepRanges[[2]string{parsed.Start, parsed.End}] = true
			if err := s.mergeRange(ctx, st, rec, item, parsed, syncedAt, dryRun, rep); err != nil {
				return false, err
			}
		}
	}

	if err := s.reconcile(ctx, st, rec.TrackingNumber, keepExacts, keepRanges, syncedAt, dryRun, rep); err != nil {
		return false, err
	}
	return touched, nil
}

func (s *Syncer) mergeExact(ctx context.Context, st *store.Store, rec registry.Record,
	item registry.Serial, serial, syncedAt string, dryRun bool, rep *UpdateReport) error {

	exists, err := st.ExactExists(ctx, serial, rec.TrackingNumber)
	if err != nil {
		return err
	}

	if exists {
		stored, found, err := st.ExactUpdatedAt(ctx, serial, rec.TrackingNumber)
		if err != nil {
			return err
		}
		if found && item.UpdatedAt != "" && stored != "" && timestampBefore(item.UpdatedAt, stored) {
			s.logger.Debug("incoming serial older than stored, skipping",
				"serial", serial, "incoming", item.UpdatedAt, "stored", stored)
			rep.Stale++
			return nil
		}
		rep.ExactsUpdated++
	} else {
		rep.ExactsAdded++
	}

	if dryRun {
		s.logger.Info("dry run", "action", actionWord(exists), "serial", serial,
			"tracking_id", rec.TrackingNumber)
		return nil
	}
	return st.UpsertExact(ctx, model.ExactSerial{
		SerialNumber: serial,
		TrackingID:   rec.TrackingNumber,
		Description:  docDescription,
		Status:       rec.Status,
		Make:         rec.MakeName,
		Model:        rec.ModelName,
		MfrSerial:    item.MfrSerial,
		SyncedAt:     syncedAt,
		UpdatedAt:    item.UpdatedAt,
	})
}

func (s *Syncer) mergeRange(ctx context.Context, st *store.Store, rec registry.Record,
	item registry.Serial, parsed model.ParsedSerial, syncedAt string, dryRun bool, rep *UpdateReport) error {

	exists, err := st.RangeExists(ctx, parsed.Start, parsed.End, rec.TrackingNumber)
	if err != nil {
		return err
	}

	if exists {
		stored, found, err := st.RangeUpdatedAt(ctx, parsed.Start, parsed.End, rec.TrackingNumber)
		if err != nil {
			return err
		}
		if found && item.UpdatedAt != "" && stored != "" && timestampBefore(item.UpdatedAt, stored) {
			s.logger.Debug("incoming range older than stored, skipping",
				"start", parsed.Start, "end", parsed.End, "incoming", item.UpdatedAt, "stored", stored)
			rep.Stale++
			return nil
		}
		rep.RangesUpdated++
	} else {
		rep.RangesAdded++
	}

	if dryRun {
		s.logger.Info("dry run", "action", actionWord(exists),
			"range_start", parsed.Start, "range_end", parsed.End,
			"tracking_id", rec.TrackingNumber)
		return nil
	}

	record := model.SerialRange{
		Start:       parsed.Start,
		End:         parsed.End,
		TrackingID:  rec.TrackingNumber,
		Description: docDescription,
		Status:      rec.Status,
		Make:        rec.MakeName,
		Model:       rec.ModelName,
		SyncedAt:    syncedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if exists {
		return st.UpdateRange(ctx, record)
	}
	return st.InsertRange(ctx, record)
}

// reconcile tombstones live rows of one tracking id that vanished from the
// record's snapshot.
func (s *Syncer) reconcile(ctx context.Context, st *store.Store, trackingID string,
	keepExacts map[string]bool, keepRanges map[[2]string]bool,
	syncedAt string, dryRun bool, rep *UpdateReport) error {

	liveExacts, err := st.LiveExactsByTracking(ctx, trackingID)
	if err != nil {
		return err
	}
	for _, serial := range liveExacts {
		if keepExacts[serial] {
			continue
		}
		rep.Removed++
		s.logger.Info("serial gone from snapshot, tombstoning",
			"serial", serial, "tracking_id", trackingID, "dry_run", dryRun)
		if dryRun {
			continue
		}
		if err := st.TombstoneExact(ctx, serial, trackingID, syncedAt); err != nil {
			return err
		}
	}

	liveRanges, err := st.LiveRangesByTracking(ctx, trackingID)
	if err != nil {
		return err
	}
	for _, rng := range liveRanges {
		if keepRanges[[2]string{rng.Start, rng.End}] {
			continue
		}
		rep.Removed++
		s.logger.Info("range gone from snapshot, tombstoning",
			"range_start", rng.Start, "range_end", rng.End,
			"tracking_id", trackingID, "dry_run", dryRun)
		if dryRun {
			continue
		}
		if err := st.TombstoneRange(ctx, rng.ID, syncedAt); err != nil {
			return err
		}
	}
	return nil
}

func actionWord(exists bool) string {
	if exists {
		return "would update"
	}
	return "would add"
}
