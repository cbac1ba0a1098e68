package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/ridcache/internal/model"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testExact creates an exact record with minimal required fields.
func testExact(serial, trackingID string) model.ExactSerial {
	return model.ExactSerial{
		SerialNumber: serial,
		TrackingID:   trackingID,
		Description:  "Remote ID (RID)",
		Status:       "accepted",
		Make:         "Acme",
		Model:        "X1",
		SyncedAt:     "2026-01-02T10:00:00Z",
		UpdatedAt:    "2026-01-01T00:00:00Z",
	}
}

// testRange creates a range record with minimal required fields.
func testRange(start, end, trackingID string) model.SerialRange {
	return model.SerialRange{
		Start:       start,
		End:         end,
		TrackingID:  trackingID,
		Description: "Remote ID (RID)",
		Status:      "accepted",
		Make:        "Zed",
		Model:       "Q2",
		SyncedAt:    "2026-01-02T10:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
}
