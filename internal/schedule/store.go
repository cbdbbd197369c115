package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/metrics"
)

// ErrLoadInProgress is returned when a load for the same stylist is already running.
var ErrLoadInProgress = errors.New("availability load already in progress")

// Source fetches raw availability for a stylist.
type Source interface {
	GetAvailability(ctx context.Context, stylistID int64) ([]Record, error)
}

// Store holds the shaped availability of the currently selected stylist.
type Store struct {
	source Source
	logger zerolog.Logger

	mu             sync.RWMutex
	index          Index
	stylistID      int64
	loaded         bool
	err            error
	loading        bool
	loadingStylist int64
	seq            uint64
	loadedAt       time.Time
}

// NewStore creates an empty store backed by source.
func NewStore(source Source, logger *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "availability").Logger()
	}
	return &Store{source: source, logger: l}
}

// Load fetches and shapes availability for stylistID, replacing the index.
// When the fetch fails the last good index is kept if it belongs to the
// same stylist; otherwise the index is emptied.
func (s *Store) Load(ctx context.Context, stylistID int64) error {
	s.mu.Lock()
	if s.loading && s.loadingStylist == stylistID {
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.seq++
	seq := s.seq
	s.loading = true
	s.loadingStylist = stylistID
	s.mu.Unlock()

	start := time.Now()
	records, err := s.source.GetAvailability(ctx, stylistID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer load started while this one was in flight.
		return nil
	}
	s.loading = false

	if err != nil {
		if !s.loaded || s.stylistID != stylistID {
			s.index = Index{}
			s.loaded = false
		}
		s.stylistID = stylistID
		s.err = err
		metrics.IncAvailabilityLoad("error")
		s.logger.Error().Err(err).Int64("stylist_id", stylistID).Msg("availability fetch failed")
		return fmt.Errorf("load availability for stylist %d: %w", stylistID, err)
	}

	idx, shapeErrs := Shape(records)
	for _, e := range shapeErrs {
		s.logger.Warn().Err(e).Int64("stylist_id", stylistID).Msg("skipping malformed availability entry")
	}

	s.index = idx
	s.stylistID = stylistID
	s.loaded = true
	s.err = nil
	s.loadedAt = time.Now()
	metrics.IncAvailabilityLoad("ok")
	metrics.ObserveAvailabilityLoad(time.Since(start))
	s.logger.Debug().Int64("stylist_id", stylistID).Int("dates", idx.Len()).Msg("availability loaded")
	return nil
}

// Index returns the current index.
func (s *Store) Index() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// HasAvailability reports whether the date key has any slot.
func (s *Store) HasAvailability(key string) bool {
	return s.Index().HasAvailability(key)
}

// Day returns the availability of a date key.
func (s *Store) Day(key string) (Day, bool) {
	return s.Index().Day(key)
}

// Err returns the error of the last load, if it failed.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// StylistID returns the stylist of the last load.
func (s *Store) StylistID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stylistID
}

// Loaded reports whether the store holds a successfully fetched index.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoadedAt returns when the index was last replaced.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
