package store

import (
	"context"
	"testing"

	"github.com/roach88/ridcache/internal/model"
)

func TestFindExact_NotFoundIsNotAnError(t *testing.T) {
	s := createTestStore(t)

	_, found, err := s.FindExact(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("FindExact() failed: %v", err)
	}
	if found {
		t.Error("found = true for absent serial")
	}
}

func TestExactExists_KeyedOnSerialAndTracking(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.UpsertExact(ctx, testExact("ABC123", "RID000000001")); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}

	exists, err := s.ExactExists(ctx, "ABC123", "RID000000001")
	if err != nil {
		t.Fatalf("ExactExists() failed: %v", err)
	}
	if !exists {
		t.Error("exists = false for stored pair")
	}

	// Same serial under a different tracking id is a different identity.
	exists, err = s.ExactExists(ctx, "ABC123", "RID000000099")
	if err != nil {
		t.Fatalf("ExactExists() failed: %v", err)
	}
	if exists {
		t.Error("exists = true for foreign tracking id")
	}
}

func TestExactExists_SeesTombstones(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.UpsertExact(ctx, testExact("ABC123", "RID000000001")); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}
	if err := s.TombstoneExact(ctx, "ABC123", "RID000000001", "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("TombstoneExact() failed: %v", err)
	}

	exists, err := s.ExactExists(ctx, "ABC123", "RID000000001")
	if err != nil {
		t.Fatalf("ExactExists() failed: %v", err)
	}
	if !exists {
		t.Error("tombstoned row invisible to existence check; merge would double-add")
	}
}

func TestScanRanges_OrderedByStart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Insert out of order.
	for _, r := range []model.SerialRange{
		testRange("CCC000", "CCC999", "RID3"),
		testRange("AAA000", "AAA999", "RID1"),
		testRange("BBB000", "BBB999", "RID2"),
	} {
		if err := s.InsertRange(ctx, r); err != nil {
			t.Fatalf("InsertRange() failed: %v", err)
		}
	}

	var starts []string
	err := s.ScanRanges(ctx, func(r model.SerialRange) (bool, error) {
		starts = append(starts, r.Start)
		return true, nil
	})
	if err != nil {
		t.Fatalf("ScanRanges() failed: %v", err)
	}

	want := []string{"AAA000", "BBB000", "CCC000"}
	if len(starts) != len(want) {
		t.Fatalf("scanned %d ranges, want %d", len(starts), len(want))
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("starts[%d] = %q, want %q", i, starts[i], want[i])
		}
	}
}

func TestScanRanges_StopsEarly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, r := range []model.SerialRange{
		testRange("AAA000", "AAA999", "RID1"),
		testRange("BBB000", "BBB999", "RID2"),
	} {
		if err := s.InsertRange(ctx, r); err != nil {
			t.Fatalf("InsertRange() failed: %v", err)
		}
	}

	var seen int
	err := s.ScanRanges(ctx, func(model.SerialRange) (bool, error) {
		seen++
		return false, nil
	})
	if err != nil {
		t.Fatalf("ScanRanges() failed: %v", err)
	}
	if seen != 1 {
		t.Errorf("callback ran %d times after stop, want 1", seen)
	}
}

func TestScanRanges_SkipsTombstones(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.InsertRange(ctx, testRange("AAA000", "AAA999", "RID1")); err != nil {
		t.Fatalf("InsertRange() failed: %v", err)
	}
	ranges, err := s.LiveRangesByTracking(ctx, "RID1")
	if err != nil {
		t.Fatalf("LiveRangesByTracking() failed: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("live ranges = %d, want 1", len(ranges))
	}
	if err := s.TombstoneRange(ctx, ranges[0].ID, "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("TombstoneRange() failed: %v", err)
	}

	var seen int
	err = s.ScanRanges(ctx, func(model.SerialRange) (bool, error) {
		seen++
		return true, nil
	})
	if err != nil {
		t.Fatalf("ScanRanges() failed: %v", err)
	}
	if seen != 0 {
		t.Errorf("tombstoned range visited %d times, want 0", seen)
	}
}

func TestLiveExactsByTracking(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, serial := range []string{"S1", "S2", "S3"} {
		if err := s.UpsertExact(ctx, testExact(serial, "RID1")); err != nil {
			t.Fatalf("UpsertExact() failed: %v", err)
		}
	}
	if err := s.UpsertExact(ctx, testExact("OTHER", "RID2")); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}
	if err := s.TombstoneExact(ctx, "S2", "RID1", "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("TombstoneExact() failed: %v", err)
	}

	serials, err := s.LiveExactsByTracking(ctx, "RID1")
	if err != nil {
		t.Fatalf("LiveExactsByTracking() failed: %v", err)
	}
	if len(serials) != 2 || serials[0] != "S1" || serials[1] != "S3" {
		t.Errorf("serials = %v, want [S1 S3]", serials)
	}
}

func TestCounts_ExcludesTombstones(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.UpsertExact(ctx, testExact("S1", "RID1")); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}
	if err := s.UpsertExact(ctx, testExact("S2", "RID1")); err != nil {
		t.Fatalf("UpsertExact() failed: %v", err)
	}
	if err := s.InsertRange(ctx, testRange("AAA000", "AAA999", "RID1")); err != nil {
		t.Fatalf("InsertRange() failed: %v", err)
	}
	if err := s.TombstoneExact(ctx, "S1", "RID1", "2026-03-01T00:00:00Z"); err != nil {
		t.Fatalf("TombstoneExact() failed: %v", err)
	}

	exacts, ranges, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if exacts != 1 || ranges != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", exacts, ranges)
	}
}
