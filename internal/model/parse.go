package model

import (
	"fmt"
	"strings"
)

// SerialKind classifies a parsed registry serial value.
type SerialKind int

const (
	// KindExact is a single serial number.
	KindExact SerialKind = iota

	// KindRange is a hyphenated interval ("ABC001-ABC999").
	KindRange
)

// ParsedSerial is the classified form of one raw serial value from the
// registry. Value is set for KindExact; Start/End for KindRange.
type ParsedSerial struct {
	Kind  SerialKind
	Value string
	Start string
	End   string
}

// ParseError reports a serial value that could not be classified. It is
// always localized to the single item; batch processing counts it and moves
// on.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse serial %q: %s", e.Value, e.Reason)
}

// ParseSerialValue classifies a raw serial value from the registry.
//
// A value containing an internal hyphen splits on the first hyphen into a
// range; a leading hyphen is not a separator, so "-ABC" is an exact serial.
// Range bounds are validated at ingest: a range whose start sorts after its
// end (byte-wise) can never match anything, so it is rejected here instead
// of being written as an unmatchable row.
func ParseSerialValue(value string) (ParsedSerial, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ParsedSerial{}, &ParseError{Value: value, Reason: "empty value"}
	}

	if i := strings.Index(value, "-"); i > 0 {
		start := strings.TrimSpace(value[:i])
		end := strings.TrimSpace(value[i+1:])
		if start == "" || end == "" {
			return ParsedSerial{}, &ParseError{Value: value, Reason: "incomplete range"}
		}
		if start > end {
			return ParsedSerial{}, &ParseError{Value: value, Reason: "range start sorts after end"}
		}
		return ParsedSerial{Kind: KindRange, Start: start, End: end}, nil
	}

	return ParsedSerial{Kind: KindExact, Value: value}, nil
}
