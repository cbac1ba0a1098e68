package resolve

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ridcache/internal/model"
	"github.com/roach88/ridcache/internal/registry"
	"github.com/roach88/ridcache/internal/store"
)

// fakeClient is a scriptable registry.Client for resolver tests.
type fakeClient struct {
	matches []registry.SerialMatch
	err     error
	calls   int
}

func (f *fakeClient) ListRecords(context.Context, int, int) ([]registry.Record, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) ListSerials(context.Context, string) ([]registry.Serial, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) FindBySerial(context.Context, string) ([]registry.SerialMatch, error) {
	f.calls++
	return f.matches, f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolve_ExactHit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertExact(ctx, model.ExactSerial{
		SerialNumber: "ABC123",
		TrackingID:   "RID000000001",
		Make:         "Acme",
		Model:        "X1",
		Status:       "accepted",
	}))

	r := New(s, nil, slog.Default())
	res, err := r.Resolve(ctx, "ABC123", Options{})
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, model.SourceLocal, res.Source)
	assert.Equal(t, "Acme", res.Make)
	assert.Equal(t, "X1", res.Model)
	assert.Equal(t, "RID000000001", res.TrackingID)
}

func TestResolve_TrimsInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertExact(ctx, model.ExactSerial{
		SerialNumber: "ABC123",
		TrackingID:   "RID000000001",
	}))

	r := New(s, nil, slog.Default())
	res, err := r.Resolve(ctx, "  ABC123\t", Options{})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "ABC123", res.SerialNumber)
}

func TestResolve_EmptySerialTouchesNothing(t *testing.T) {
	// A nil store and nil client would panic if the cascade reached them.
	r := New(nil, nil, slog.Default())

	for _, input := range []string{"", "   ", "\t\n"} {
		res, err := r.Resolve(context.Background(), input, Options{AllowRemoteFallback: true})
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Equal(t, model.SourceNone, res.Source)
	}
}

func TestResolve_RangeBoundariesInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRange(ctx, model.SerialRange{
		Start: "AAA000", End: "AAA999", TrackingID: "RID2", Make: "Zed",
	}))

	r := New(s, nil, slog.Default())
	for _, serial := range []string{"AAA000", "AAA500", "AAA999"} {
		res, err := r.Resolve(ctx, serial, Options{})
		require.NoError(t, err)
		assert.True(t, res.Found, "serial %q", serial)
		assert.Equal(t, model.SourceLocal, res.Source)
		assert.Equal(t, "Zed", res.Make)
	}
}

func TestResolve_BetweenRangesMisses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRange(ctx, model.SerialRange{Start: "AAA000", End: "AAA999", TrackingID: "RID1"}))
	require.NoError(t, s.InsertRange(ctx, model.SerialRange{Start: "CCC000", End: "CCC999", TrackingID: "RID2"}))

	r := New(s, nil, slog.Default())
	res, err := r.Resolve(ctx, "BBB500", Options{})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, model.SourceNone, res.Source)
}

func TestResolve_OverlappingRangesFirstByStartWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRange(ctx, model.SerialRange{Start: "AAA500", End: "AAB500", TrackingID: "RID-LATER", Make: "Later"}))
	require.NoError(t, s.InsertRange(ctx, model.SerialRange{Start: "AAA000", End: "AAA999", TrackingID: "RID-FIRST", Make: "First"}))

	r := New(s, nil, slog.Default())
	res, err := r.Resolve(ctx, "AAA700", Options{})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "First", res.Make, "first range in start order must win")
}

func TestResolve_NoFallbackWithoutOption(t *testing.T) {
	s := newTestStore(t)
	client := &fakeClient{matches: []registry.SerialMatch{{TrackingNumber: "RID9"}}}

	r := New(s, client, slog.Default())
	res, err := r.Resolve(context.Background(), "UNKNOWN", Options{})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Zero(t, client.calls, "fallback disabled, client must not be called")
}

func TestResolve_RemoteFallbackHit(t *testing.T) {
	s := newTestStore(t)
	client := &fakeClient{matches: []registry.SerialMatch{{
		TrackingNumber: "RID000000009",
		DocType:        "rid",
		Status:         "pending",
		MakeName:       "Skyline",
		ModelName:      "S2",
		UpdatedAt:      "2026-01-15T00:00:00Z",
	}}}

	r := New(s, client, slog.Default())
	res, err := r.Resolve(context.Background(), "2146BF3300000000", Options{AllowRemoteFallback: true})
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, model.SourceRemote, res.Source)
	assert.Equal(t, "Skyline", res.Make)
	assert.Equal(t, "RID", res.Description)
	assert.Equal(t, "2146BF3300000000", res.MfrSerial)
}

func TestResolve_TransportErrorIsSilentMiss(t *testing.T) {
	s := newTestStore(t)
	client := &fakeClient{err: &registry.TransportError{Op: "find by serial", StatusCode: 503}}

	r := New(s, client, slog.Default())
	res, err := r.Resolve(context.Background(), "UNKNOWN", Options{AllowRemoteFallback: true})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, model.SourceNone, res.Source)
}

func TestResolve_CacheRemoteResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := &fakeClient{matches: []registry.SerialMatch{{
		TrackingNumber: "RID000000009",
		DocType:        "rid",
		MakeName:       "Skyline",
		ModelName:      "S2",
		UpdatedAt:      "2026-01-15T00:00:00Z",
	}}}

	r := New(s, client, slog.Default())
	res, err := r.Resolve(ctx, "2146BF3300000000", Options{AllowRemoteFallback: true, CacheRemoteResult: true})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, model.SourceRemote, res.Source)
	assert.NoError(t, res.CacheWriteErr)

	// Subsequent resolution with fallback disabled hits the cache.
	res2, err := r.Resolve(ctx, "2146BF3300000000", Options{})
	require.NoError(t, err)
	require.True(t, res2.Found)
	assert.Equal(t, model.SourceLocal, res2.Source)
	assert.Equal(t, "Skyline", res2.Make)
	assert.Equal(t, 1, client.calls, "second resolve must not hit the registry")
}

// failingWriteStore lets reads through but rejects cache writes.
type failingWriteStore struct {
	*store.Store
}

func (f *failingWriteStore) UpsertExact(context.Context, model.ExactSerial) error {
	return &store.StoreError{Op: "upsert exact", Err: errors.New("disk full")}
}

func TestResolve_CacheWriteFailureIsWarning(t *testing.T) {
	s := newTestStore(t)
	client := &fakeClient{matches: []registry.SerialMatch{{TrackingNumber: "RID9", MakeName: "Skyline"}}}

	r := New(&failingWriteStore{Store: s}, client, slog.Default())
	res, err := r.Resolve(context.Background(), "UNKNOWN", Options{AllowRemoteFallback: true, CacheRemoteResult: true})
	require.NoError(t, err, "cache write failure must not fail the lookup")

	assert.True(t, res.Found)
	assert.Equal(t, model.SourceRemote, res.Source)
	require.Error(t, res.CacheWriteErr)
	assert.True(t, store.IsStoreError(res.CacheWriteErr))
}
