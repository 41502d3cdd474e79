// Package records owns the history of farm harvests: an append-only,
// most-recent-first sequence persisted as one value in a key-value backend.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/observability"
	"github.com/google/uuid"
)

// StorageKey is the backend key under which the full record sequence is stored.
const StorageKey = "agri_app_records"

// Backend is a key-value medium. Save must replace the value atomically.
type Backend interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

// Seed returns the example records written on first use, in their fixed order.
func Seed() []domain.FarmRecord {
	return []domain.FarmRecord{
		{ID: "1", Date: domain.NewDate(2023, time.June, 15), Crop: "Rice", YieldKgPerHa: 4200, Season: string(domain.SeasonKharif)},
		{ID: "2", Date: domain.NewDate(2023, time.November, 20), Crop: "Wheat", YieldKgPerHa: 3800, Season: string(domain.SeasonRabi)},
		{ID: "3", Date: domain.NewDate(2024, time.June, 10), Crop: "Soybean", YieldKgPerHa: 2100, Season: string(domain.SeasonKharif)},
	}
}

// Store serializes every read-modify-write of the record sequence behind one lock.
type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *observability.Metrics
	mu      sync.Mutex
	ready   atomic.Bool
}

// New creates a Store. Call Init once at startup to seed empty storage.
func New(backend Backend, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		metrics: metrics,
	}
}

// Init seeds the backend if it holds no records yet.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := s.load(ctx)
	if err != nil {
		return err
	}
	if !found {
		if err := s.save(ctx, Seed()); err != nil {
			return err
		}
		s.logger.Info("record store seeded", "records", len(Seed()))
	}

	s.markReady()
	return nil
}

// markReady records that storage has been read successfully. A store whose
// Init failed becomes ready once the backend recovers. Caller must hold s.mu.
func (s *Store) markReady() {
	if s.ready.CompareAndSwap(false, true) {
		s.metrics.RecordStoreReady.Set(1)
	}
}

// CheckReadiness returns nil once Init has succeeded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("record store has not been initialized")
	}
	return nil
}

// List returns all records, most recent first. Pristine storage is seeded.
// If storage cannot be read, List degrades to the seed set without persisting it.
func (s *Store) List(ctx context.Context) ([]domain.FarmRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, found, err := s.load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("record storage unavailable, serving seed records", "error", err)
		return Seed(), nil
	}
	s.markReady()
	if found {
		return recs, nil
	}

	seed := Seed()
	if err := s.save(ctx, seed); err != nil {
		s.logger.Warn("could not persist seed records", "error", err)
	}
	return seed, nil
}

// Append validates rec, fills in a missing ID and date, prepends it to the
// stored sequence, and persists the result. The stored record is returned.
// Storage failures are reported as domain.ErrStorageUnavailable.
func (s *Store) Append(ctx context.Context, rec domain.FarmRecord) (domain.FarmRecord, error) {
	rec.Crop = strings.TrimSpace(rec.Crop)
	rec.Season = strings.TrimSpace(rec.Season)
	if rec.Crop == "" {
		return domain.FarmRecord{}, fmt.Errorf("%w: record crop is required", domain.ErrInvalidInput)
	}
	if rec.YieldKgPerHa < 0 {
		return domain.FarmRecord{}, fmt.Errorf("%w: record yield must be non-negative, got %d", domain.ErrInvalidInput, rec.YieldKgPerHa)
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = domain.Today()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, found, err := s.load(ctx)
	if err != nil {
		return domain.FarmRecord{}, err
	}
	s.markReady()
	if !found {
		current = Seed()
	}

	updated := make([]domain.FarmRecord, 0, len(current)+1)
	updated = append(updated, rec)
	updated = append(updated, current...)

	if err := s.save(ctx, updated); err != nil {
		return domain.FarmRecord{}, err
	}

	s.metrics.RecordsAppended.Inc()
	s.logger.Info("farm record saved", "id", rec.ID, "crop", rec.Crop, "records", len(updated))
	return rec, nil
}

// load reads and decodes the stored sequence. Decode failures count as
// unavailable storage. Caller must hold s.mu.
func (s *Store) load(ctx context.Context) ([]domain.FarmRecord, bool, error) {
	data, found, err := s.backend.Load(ctx, StorageKey)
	if err != nil {
		s.metrics.StorageErrors.WithLabelValues("load").Inc()
		return nil, false, fmt.Errorf("%w: load records: %w", domain.ErrStorageUnavailable, err)
	}
	if !found {
		return nil, false, nil
	}

	var recs []domain.FarmRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		s.metrics.StorageErrors.WithLabelValues("decode").Inc()
		return nil, false, fmt.Errorf("%w: decode records: %w", domain.ErrStorageUnavailable, err)
	}
	return recs, true, nil
}

// save encodes and writes the full sequence. Caller must hold s.mu.
func (s *Store) save(ctx context.Context, recs []domain.FarmRecord) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := s.backend.Save(ctx, StorageKey, data); err != nil {
		s.metrics.StorageErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("%w: save records: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}
