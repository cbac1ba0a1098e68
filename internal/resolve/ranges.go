package resolve

import (
	"context"

	"github.com/roach88/ridcache/internal/model"
)

// RangeMatcher decides whether a serial falls inside any stored range.
// The tie-break is part of the contract: when ranges overlap, the first
// containing range in serial_start order wins. Implementations may change
// the search strategy but must preserve that ordering.
type RangeMatcher interface {
	Match(ctx context.Context, serial string) (model.SerialRange, bool, error)
}

// RangeScanner streams range records in serial_start order. Satisfied by
// *store.Store.
type RangeScanner interface {
	ScanRanges(ctx context.Context, fn func(model.SerialRange) (bool, error)) error
}

// linearMatcher walks the ordered range scan and returns the first
// containing range. O(ranges) per lookup, which is fine at the tens to low
// hundreds of ranges the registry actually carries; swap this for a sorted
// interval search if that stops being true.
type linearMatcher struct {
	store RangeScanner
}

// NewLinearMatcher returns the scan-based RangeMatcher over a store.
func NewLinearMatcher(st RangeScanner) RangeMatcher {
	return &linearMatcher{store: st}
}

func (m *linearMatcher) Match(ctx context.Context, serial string) (model.SerialRange, bool, error) {
	var hit model.SerialRange
	var found bool

	err := m.store.ScanRanges(ctx, func(r model.SerialRange) (bool, error) {
		if r.Contains(serial) {
			hit = r
			found = true
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return model.SerialRange{}, false, err
	}
	return hit, found, nil
}
