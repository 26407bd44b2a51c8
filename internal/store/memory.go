package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goldmandi/booking-engine/internal/model"
)

// MemoryStore implements Store with in-memory state. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	rates    model.RateSet
	bookings []model.BookingRecord
	byID     map[string]int
	byIdem   map[string]int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]int),
		byIdem: make(map[string]int),
	}
}

func (s *MemoryStore) SaveRates(_ context.Context, rates model.RateSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external mutation.
	s.rates = rates.Clone()
	return nil
}

func (s *MemoryStore) LoadRates(_ context.Context) (model.RateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rates == nil {
		return nil, ErrNoSavedRates
	}
	return s.rates.Clone(), nil
}

func (s *MemoryStore) AppendBooking(_ context.Context, rec *model.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; exists {
		return fmt.Errorf("booking %s already exists", rec.ID)
	}

	s.bookings = append(s.bookings, *rec)
	idx := len(s.bookings) - 1
	s.byID[rec.ID] = idx
	if rec.IdempotencyKey != "" {
		s.byIdem[rec.IdempotencyKey] = idx
	}
	return nil
}

func (s *MemoryStore) ListBookings(_ context.Context) ([]model.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BookingRecord, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id string) (*model.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	rec := s.bookings[idx]
	return &rec, nil
}

func (s *MemoryStore) FindBookingByIdempotencyKey(_ context.Context, key string) (*model.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byIdem[key]
	if !ok {
		return nil, ErrBookingNotFound
	}
	rec := s.bookings[idx]
	return &rec, nil
}
