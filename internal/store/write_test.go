package store

import (
	"context"
	"testing"
)

func TestUpsertExact_ReplacesWholesale(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testExact("ABC123", "RID000000001")
	if err := s.UpsertExact(ctx, rec); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}

	rec.Make = "Beta"
	rec.Model = "Y9"
	rec.UpdatedAt = "2026-02-01T00:00:00Z"
	if err := s.UpsertExact(ctx, rec); err != nil {
		t.Fatalf("second UpsertExact() failed: %v", err)
	}

	got, found, err := s.FindExact(ctx, "ABC123")
	if err != nil {
		t.Fatalf("FindExact() failed: %v", err)
	}
	if !found {
		t.Fatal("FindExact() found = false, want true")
	}
	if got.Make != "Beta" || got.Model != "Y9" || got.UpdatedAt != "2026-02-01T00:00:00Z" {
		t.Errorf("row not replaced: %+v", got)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exact_serials").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 (no duplicates)", count)
	}
}

func TestUpsertExact_ResurrectsTombstone(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testExact("ABC123", "RID000000001")
	if err := s.UpsertExact(ctx, rec); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}
	if err := s.TombstoneExact(ctx, "ABC123", "RID000000001", "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("TombstoneExact() failed: %v", err)
	}

	if _, found, _ := s.FindExact(ctx, "ABC123"); found {
		t.Fatal("tombstoned row still visible to FindExact")
	}

	if err := s.UpsertExact(ctx, rec); err != nil {
		t.Fatalf("resurrect UpsertExact() failed: %v", err)
	}
	if _, found, _ := s.FindExact(ctx, "ABC123"); !found {
		t.Error("resurrected row not visible to FindExact")
	}
}

func TestInsertRange_NoUniqueConstraint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testRange("AAA000", "AAA999", "RID000000002")
	for i := 0; i < 2; i++ {
		if err := s.InsertRange(ctx, rec); err != nil {
			t.Fatalf("InsertRange() iteration %d failed: %v", i, err)
		}
	}

	// The store itself allows duplicates; dedup is the syncer's job.
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM serial_ranges").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}
}

func TestUpdateRange_ReplacesInPlace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testRange("AAA000", "AAA999", "RID000000002")
	if err := s.InsertRange(ctx, rec); err != nil {
		t.Fatalf("InsertRange() failed: %v", err)
	}

	rec.Status = "pending"
	rec.UpdatedAt = "2026-02-01T00:00:00Z"
	if err := s.UpdateRange(ctx, rec); err != nil {
		t.Fatalf("UpdateRange() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM serial_ranges").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d, want 1", count)
	}

	var status, updatedAt string
	err := s.db.QueryRow(`
		SELECT status, registry_updated_at FROM serial_ranges
		WHERE serial_start = 'AAA000' AND serial_end = 'AAA999'
	`).Scan(&status, &updatedAt)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if status != "pending" || updatedAt != "2026-02-01T00:00:00Z" {
		t.Errorf("row not updated: status=%q updated_at=%q", status, updatedAt)
	}
}

func TestSetMetadata_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SetMetadata(ctx, "last_sync_date", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("SetMetadata() failed: %v", err)
	}
	if err := s.SetMetadata(ctx, "last_sync_date", "2026-02-01T00:00:00Z"); err != nil {
		t.Fatalf("second SetMetadata() failed: %v", err)
	}

	got, found, err := s.GetMetadata(ctx, "last_sync_date")
	if err != nil {
		t.Fatalf("GetMetadata() failed: %v", err)
	}
	if !found {
		t.Fatal("GetMetadata() found = false, want true")
	}
	if got != "2026-02-01T00:00:00Z" {
		t.Errorf("value = %q, want overwritten value", got)
	}
}

func TestGetMetadata_MissingKey(t *testing.T) {
	s := createTestStore(t)

	_, found, err := s.GetMetadata(context.Background(), "never_written")
	if err != nil {
		t.Fatalf("GetMetadata() failed: %v", err)
	}
	if found {
		t.Error("found = true for missing key")
	}
}
