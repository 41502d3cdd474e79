package records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/farm-yield-service/internal/adapter/memory"
	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- failing backend ---

type flakyBackend struct {
	inner   Backend
	loadErr error
	saveErr error
	saves   int
}

func (f *flakyBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return f.inner.Load(ctx, key)
}

func (f *flakyBackend) Save(ctx context.Context, key string, value []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.inner.Save(ctx, key, value)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(b Backend) (*Store, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(b, discardLogger(), m), m
}

func TestList_PristineStorageReturnsSeed(t *testing.T) {
	backend := memory.New()
	store, _ := newTestStore(backend)

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "Rice", recs[0].Crop)
	assert.Equal(t, "2023-06-15", recs[0].Date.String())
	assert.Equal(t, 4200, recs[0].YieldKgPerHa)
	assert.Equal(t, "Kharif", recs[0].Season)
	assert.Equal(t, "Wheat", recs[1].Crop)
	assert.Equal(t, "Rabi", recs[1].Season)
	assert.Equal(t, "Soybean", recs[2].Crop)
	assert.Equal(t, "2024-06-10", recs[2].Date.String())

	// Seed is persisted on first access.
	raw, found, err := backend.Load(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	var stored []domain.FarmRecord
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Empty(t, cmp.Diff(Seed(), stored))
}

func TestAppend_PrependsToPriorSequence(t *testing.T) {
	store, m := newTestStore(memory.New())
	ctx := context.Background()

	before, err := store.List(ctx)
	require.NoError(t, err)

	rec := domain.FarmRecord{ID: "r-1", Date: domain.NewDate(2025, time.March, 2), Crop: "Maize", YieldKgPerHa: 5100, Season: "Rabi"}
	saved, err := store.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec, saved)

	after, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, rec, after[0])
	assert.Empty(t, cmp.Diff(before, after[1:]))
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsAppended), 0)
}

func TestAppend_OnPristineStorageSeedsFirst(t *testing.T) {
	store, _ := newTestStore(memory.New())
	ctx := context.Background()

	_, err := store.Append(ctx, domain.FarmRecord{ID: "x", Date: domain.NewDate(2025, 1, 1), Crop: "Cotton", YieldKgPerHa: 1900, Season: "Kharif"})
	require.NoError(t, err)

	recs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "x", recs[0].ID)
	assert.Empty(t, cmp.Diff(Seed(), recs[1:]))
}

func TestAppend_FillsIDAndDate(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.October, 3, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	store, _ := newTestStore(memory.New())

	saved, err := store.Append(context.Background(), domain.FarmRecord{Crop: " Wheat ", YieldKgPerHa: 3600, Season: "Rabi"})
	require.NoError(t, err)

	assert.Len(t, saved.ID, 36)
	assert.Equal(t, "2025-10-03", saved.Date.String())
	assert.Equal(t, "Wheat", saved.Crop)
}

func TestAppend_InvalidRecord(t *testing.T) {
	store, _ := newTestStore(memory.New())

	tests := []struct {
		name string
		rec  domain.FarmRecord
	}{
		{"missing crop", domain.FarmRecord{YieldKgPerHa: 100}},
		{"blank crop", domain.FarmRecord{Crop: "   ", YieldKgPerHa: 100}},
		{"negative yield", domain.FarmRecord{Crop: "Rice", YieldKgPerHa: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Append(context.Background(), tt.rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestList_StorageUnavailableDegradesToSeed(t *testing.T) {
	backend := &flakyBackend{inner: memory.New(), loadErr: errors.New("quota exceeded")}
	store, m := newTestStore(backend)

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(Seed(), recs))
	assert.Equal(t, 0, backend.saves, "degraded list must not persist")
	assert.InDelta(t, 1, testutil.ToFloat64(m.StorageErrors.WithLabelValues("load")), 0)
}

func TestList_CorruptDataDegradesToSeed(t *testing.T) {
	backend := memory.New()
	require.NoError(t, backend.Save(context.Background(), StorageKey, []byte("{not json")))
	store, m := newTestStore(backend)

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StorageErrors.WithLabelValues("decode")), 0)
}

func TestList_SeedSaveFailureStillReturnsSeed(t *testing.T) {
	backend := &flakyBackend{inner: memory.New(), saveErr: errors.New("read-only")}
	store, _ := newTestStore(backend)

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, 1, backend.saves)
}

func TestAppend_StorageUnavailable(t *testing.T) {
	rec := domain.FarmRecord{ID: "r", Date: domain.NewDate(2025, 1, 1), Crop: "Rice", YieldKgPerHa: 4000}

	t.Run("load fails", func(t *testing.T) {
		store, _ := newTestStore(&flakyBackend{inner: memory.New(), loadErr: errors.New("disabled")})
		_, err := store.Append(context.Background(), rec)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})

	t.Run("save fails", func(t *testing.T) {
		inner := memory.New()
		backend := &flakyBackend{inner: inner}
		store, m := newTestStore(backend)
		_, err := store.List(context.Background())
		require.NoError(t, err)

		backend.saveErr = errors.New("quota exceeded")
		_, err = store.Append(context.Background(), rec)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.Contains(t, err.Error(), "quota exceeded")
		assert.InDelta(t, 0, testutil.ToFloat64(m.RecordsAppended), 0)

		// Nothing was written.
		backend.saveErr = nil
		recs, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})
}

func TestInit_SeedsOnceAndMarksReady(t *testing.T) {
	backend := &flakyBackend{inner: memory.New()}
	store, m := newTestStore(backend)
	ctx := context.Background()

	require.Error(t, store.CheckReadiness(ctx))

	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Init(ctx))
	assert.Equal(t, 1, backend.saves)
	assert.NoError(t, store.CheckReadiness(ctx))
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordStoreReady), 0)
}

func TestInit_PreservesExistingRecords(t *testing.T) {
	backend := memory.New()
	existing := []domain.FarmRecord{{ID: "only", Date: domain.NewDate(2022, 2, 2), Crop: "Maize", YieldKgPerHa: 5000, Season: "Rabi"}}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), StorageKey, data))

	store, _ := newTestStore(backend)
	require.NoError(t, store.Init(context.Background()))

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(existing, recs))
}

func TestInit_StorageUnavailable(t *testing.T) {
	store, _ := newTestStore(&flakyBackend{inner: memory.New(), loadErr: errors.New("disabled")})

	err := store.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Error(t, store.CheckReadiness(context.Background()))
}

func TestReadiness_RecoversAfterFailedInit(t *testing.T) {
	ctx := context.Background()
	rec := domain.FarmRecord{ID: "r", Date: domain.NewDate(2025, 1, 1), Crop: "Rice", YieldKgPerHa: 4000}

	tests := []struct {
		name string
		op   func(*Store) error
	}{
		{"list", func(s *Store) error { _, err := s.List(ctx); return err }},
		{"append", func(s *Store) error { _, err := s.Append(ctx, rec); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &flakyBackend{inner: memory.New(), loadErr: errors.New("disabled")}
			store, m := newTestStore(backend)

			require.Error(t, store.Init(ctx))
			require.Error(t, store.CheckReadiness(ctx))
			assert.InDelta(t, 0, testutil.ToFloat64(m.RecordStoreReady), 0)

			backend.loadErr = nil
			require.NoError(t, tt.op(store))

			assert.NoError(t, store.CheckReadiness(ctx))
			assert.InDelta(t, 1, testutil.ToFloat64(m.RecordStoreReady), 0)
		})
	}
}

func TestAppend_ConcurrentWritersLoseNothing(t *testing.T) {
	store, _ := newTestStore(memory.New())
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))

	const writers = 25
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, domain.FarmRecord{Date: domain.NewDate(2025, 1, 1+i%28), Crop: "Rice", YieldKgPerHa: 4000 + i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, writers+3)
	assert.Empty(t, cmp.Diff(Seed(), recs[writers:]))
}
