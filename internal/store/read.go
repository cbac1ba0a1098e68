package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/ridcache/internal/model"
)

// FindExact returns the live (non-tombstoned) exact record for a serial
// number. The second return is false when no such row exists; absence is
// not an error.
func (s *Store) FindExact(ctx context.Context, serial string) (model.ExactSerial, bool, error) {
	var rec model.ExactSerial
	var deleted int
	err := s.db.QueryRowContext(ctx, `
		SELECT serial_number, registry_tracking_id, description, status, make, model,
		       manufacturer_serial, synced_at, registry_updated_at, deleted
		FROM exact_serials
		WHERE serial_number = ? AND deleted = 0
	`, serial).Scan(
		&rec.SerialNumber,
		&rec.TrackingID,
		&rec.Description,
		&rec.Status,
		&rec.Make,
		&rec.Model,
		&rec.MfrSerial,
		&rec.SyncedAt,
		&rec.UpdatedAt,
		&deleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExactSerial{}, false, nil
	}
	if err != nil {
		return model.ExactSerial{}, false, storeErr("find exact", err)
	}
	rec.Deleted = deleted != 0
	return rec, true, nil
}

// ExactExists reports whether any row (tombstoned or not) exists for the
// (serial number, tracking id) pair. Merge existence is keyed on the pair,
// not on the serial alone, so a serial re-registered under a different
// record counts as an add.
func (s *Store) ExactExists(ctx context.Context, serial, trackingID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exact_serials
		WHERE serial_number = ? AND registry_tracking_id = ?
	`, serial, trackingID).Scan(&count)
	if err != nil {
		return false, storeErr("exact exists", err)
	}
	return count > 0, nil
}

// ExactUpdatedAt returns the stored registry timestamp for an exact row,
// tombstoned or not. Used by the merge stale-guard.
func (s *Store) ExactUpdatedAt(ctx context.Context, serial, trackingID string) (string, bool, error) {
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT registry_updated_at FROM exact_serials
		WHERE serial_number = ? AND registry_tracking_id = ?
	`, serial, trackingID).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("exact updated_at", err)
	}
	return updatedAt, true, nil
}

// RangeExists reports whether any row exists for the
// (start, end, tracking id) triple, the duplicate identity for ranges.
func (s *Store) RangeExists(ctx context.Context, start, end, trackingID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM serial_ranges
		WHERE serial_start = ? AND serial_end = ? AND registry_tracking_id = ?
	`, start, end, trackingID).Scan(&count)
	if err != nil {
		return false, storeErr("range exists", err)
	}
	return count > 0, nil
}

// RangeUpdatedAt returns the stored registry timestamp for a range row.
func (s *Store) RangeUpdatedAt(ctx context.Context, start, end, trackingID string) (string, bool, error) {
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT registry_updated_at FROM serial_ranges
		WHERE serial_start = ? AND serial_end = ? AND registry_tracking_id = ?
	`, start, end, trackingID).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("range updated_at", err)
	}
	return updatedAt, true, nil
}

// ScanRanges streams all live range records ordered by serial_start
// ascending (row ID breaks ties, so the order is total and stable). The
// callback returns false to stop early. The ordering is an observable
// contract: when ranges overlap, the first range in start order wins.
func (s *Store) ScanRanges(ctx context.Context, fn func(model.SerialRange) (bool, error)) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, serial_start, serial_end, registry_tracking_id, description,
		       status, make, model, manufacturer_serial, synced_at, registry_updated_at
		FROM serial_ranges
		WHERE deleted = 0
		ORDER BY serial_start ASC, id ASC
	`)
	if err != nil {
		return storeErr("scan ranges", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.SerialRange
		if err := rows.Scan(
			&rec.ID,
			&rec.Start,
			&rec.End,
			&rec.TrackingID,
			&rec.Description,
			&rec.Status,
			&rec.Make,
			&rec.Model,
			&rec.MfrSerial,
			&rec.SyncedAt,
			&rec.UpdatedAt,
		); err != nil {
			return storeErr("scan ranges", err)
		}
		cont, err := fn(rec)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}

	return storeErr("scan ranges", rows.Err())
}

// LiveExactsByTracking returns the live serial numbers attached to a
// tracking id. Used by sync reconciliation to detect serials that
// disappeared from a record's snapshot.
func (s *Store) LiveExactsByTracking(ctx context.Context, trackingID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_number FROM exact_serials
		WHERE registry_tracking_id = ? AND deleted = 0
		ORDER BY serial_number ASC
	`, trackingID)
	if err != nil {
		return nil, storeErr("live exacts by tracking", err)
	}
	defer rows.Close()

	var serials []string
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, storeErr("live exacts by tracking", err)
		}
		serials = append(serials, serial)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("live exacts by tracking", err)
	}
	return serials, nil
}

// LiveRangesByTracking returns the live range rows attached to a tracking
// id, bounds and row IDs only.
func (s *Store) LiveRangesByTracking(ctx context.Context, trackingID string) ([]model.SerialRange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, serial_start, serial_end FROM serial_ranges
		WHERE registry_tracking_id = ? AND deleted = 0
		ORDER BY serial_start ASC, id ASC
	`, trackingID)
	if err != nil {
		return nil, storeErr("live ranges by tracking", err)
	}
	defer rows.Close()

	var ranges []model.SerialRange
	for rows.Next() {
		rec := model.SerialRange{TrackingID: trackingID}
		if err := rows.Scan(&rec.ID, &rec.Start, &rec.End); err != nil {
			return nil, storeErr("live ranges by tracking", err)
		}
		ranges = append(ranges, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("live ranges by tracking", err)
	}
	return ranges, nil
}

// GetMetadata returns the value for a metadata key. The second return is
// false when the key has never been written.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM metadata WHERE key = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get metadata", err)
	}
	return value, true, nil
}

// AllMetadata returns every metadata key/value pair.
func (s *Store) AllMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, storeErr("all metadata", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, storeErr("all metadata", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("all metadata", err)
	}
	return meta, nil
}

// Counts returns the number of live exact and range records.
func (s *Store) Counts(ctx context.Context) (exacts, ranges int64, err error) {
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exact_serials WHERE deleted = 0`).Scan(&exacts); err != nil {
		return 0, 0, storeErr("count exacts", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM serial_ranges WHERE deleted = 0`).Scan(&ranges); err != nil {
		return 0, 0, storeErr("count ranges", err)
	}
	return exacts, ranges, nil
}
