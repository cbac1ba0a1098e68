package store

import (
	"context"

	"github.com/roach88/ridcache/internal/model"
)

// UpsertExact writes an exact serial record with replace semantics: a row
// with the same serial_number is overwritten wholesale, and a tombstoned
// row is resurrected. This is the only write path shared by sync and the
// resolution fallback cache.
func (s *Store) UpsertExact(ctx context.Context, rec model.ExactSerial) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exact_serials
		(serial_number, registry_tracking_id, description, status, make, model,
		 manufacturer_serial, synced_at, registry_updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(serial_number) DO UPDATE SET
			registry_tracking_id = excluded.registry_tracking_id,
			description          = excluded.description,
			status               = excluded.status,
			make                 = excluded.make,
			model                = excluded.model,
			manufacturer_serial  = excluded.manufacturer_serial,
			synced_at            = excluded.synced_at,
			registry_updated_at  = excluded.registry_updated_at,
			deleted              = excluded.deleted
	`,
		rec.SerialNumber,
		rec.TrackingID,
		rec.Description,
		rec.Status,
		rec.Make,
		rec.Model,
		rec.MfrSerial,
		rec.SyncedAt,
		rec.UpdatedAt,
		boolToInt(rec.Deleted),
	)
	return storeErr("upsert exact", err)
}

// InsertRange inserts a new range record unconditionally. The store keeps
// no unique constraint on ranges; callers decide insert vs update via
// RangeExists.
func (s *Store) InsertRange(ctx context.Context, rec model.SerialRange) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO serial_ranges
		(serial_start, serial_end, registry_tracking_id, description, status,
		 make, model, manufacturer_serial, synced_at, registry_updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Start,
		rec.End,
		rec.TrackingID,
		rec.Description,
		rec.Status,
		rec.Make,
		rec.Model,
		rec.MfrSerial,
		rec.SyncedAt,
		rec.UpdatedAt,
		boolToInt(rec.Deleted),
	)
	return storeErr("insert range", err)
}

// UpdateRange replaces the descriptive fields of the range identified by
// (start, end, tracking id), resurrecting it if tombstoned. No-op if the
// key triple does not exist.
func (s *Store) UpdateRange(ctx context.Context, rec model.SerialRange) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE serial_ranges SET
			description         = ?,
			status              = ?,
			make                = ?,
			model               = ?,
			manufacturer_serial = ?,
			synced_at           = ?,
			registry_updated_at = ?,
			deleted             = 0
		WHERE serial_start = ? AND serial_end = ? AND registry_tracking_id = ?
	`,
		rec.Description,
		rec.Status,
		rec.Make,
		rec.Model,
		rec.MfrSerial,
		rec.SyncedAt,
		rec.UpdatedAt,
		rec.Start,
		rec.End,
		rec.TrackingID,
	)
	return storeErr("update range", err)
}

// TombstoneExact marks an exact serial as deleted without removing the row.
func (s *Store) TombstoneExact(ctx context.Context, serial, trackingID, syncedAt string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE exact_serials SET deleted = 1, synced_at = ?
		WHERE serial_number = ? AND registry_tracking_id = ? AND deleted = 0
	`, syncedAt, serial, trackingID)
	return storeErr("tombstone exact", err)
}

// TombstoneRange marks a range row as deleted by its row ID.
func (s *Store) TombstoneRange(ctx context.Context, id int64, syncedAt string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE serial_ranges SET deleted = 1, synced_at = ?
		WHERE id = ? AND deleted = 0
	`, syncedAt, id)
	return storeErr("tombstone range", err)
}

// SetMetadata writes a metadata key, overwriting any previous value.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return storeErr("set metadata", err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
