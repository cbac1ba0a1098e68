package model

// Source identifies where a lookup result came from.
type Source string

const (
	// SourceLocal means the serial matched a row in the local cache
	// (exact table or range table).
	SourceLocal Source = "local"

	// SourceRemote means the serial was resolved by querying the registry
	// directly after the local cache missed.
	SourceRemote Source = "remote"

	// SourceNone means no match anywhere.
	SourceNone Source = "none"
)

// ExactSerial is a single fully-specified serial number mapped to one
// compliance record. SerialNumber is the unique, case-sensitive key.
type ExactSerial struct {
	SerialNumber string
	TrackingID   string
	Description  string
	Status       string
	Make         string
	Model        string

	// MfrSerial is the manufacturer's own serial value when the registry
	// reports one. Often empty.
	MfrSerial string

	// SyncedAt is the local write timestamp (RFC 3339).
	SyncedAt string

	// UpdatedAt is the upstream registry update timestamp, stored verbatim.
	UpdatedAt string

	// Deleted marks a tombstoned row. Tombstones are written when a sync
	// pass observes that a serial disappeared from its record's snapshot;
	// read paths skip them.
	Deleted bool
}

// SerialRange is a closed interval [Start, End] of serials sharing one
// compliance record. Ordering is byte-wise lexicographic; ranges are only
// meaningful for fixed-width, zero-padded serial schemes where that order
// matches the manufacturer's numbering.
type SerialRange struct {
	// ID is the store-assigned row identity. Zero until persisted.
	ID int64

	Start string
	End   string

	TrackingID  string
	Description string
	Status      string
	Make        string
	Model       string
	MfrSerial   string
	SyncedAt    string
	UpdatedAt   string
	Deleted     bool
}

// Contains reports whether serial falls inside the range, boundaries
// inclusive, under byte-wise string comparison.
func (r SerialRange) Contains(serial string) bool {
	return r.Start <= serial && serial <= r.End
}

// Lookup is the uniform result envelope returned by every resolution,
// regardless of which stage of the cascade produced it. Metadata fields are
// empty when Found is false.
type Lookup struct {
	Found        bool   `json:"found"`
	SerialNumber string `json:"serial_number"`
	TrackingID   string `json:"tracking_id,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	MfrSerial    string `json:"mfr_serial,omitempty"`
	Source       Source `json:"source"`
}

// NotFound returns the canonical miss envelope for a serial.
func NotFound(serial string) Lookup {
	return Lookup{SerialNumber: serial, Source: SourceNone}
}
