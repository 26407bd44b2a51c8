package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goldmandi/booking-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Rate writes go to the primary and refresh the cache; booking reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, refresh cache) ---

func (s *CachedStore) SaveRates(ctx context.Context, rates model.RateSet) error {
	if err := s.primary.SaveRates(ctx, rates); err != nil {
		return err
	}
	s.cacheRates(ctx, rates)
	return nil
}

func (s *CachedStore) AppendBooking(ctx context.Context, rec *model.BookingRecord) error {
	if err := s.primary.AppendBooking(ctx, rec); err != nil {
		return err
	}
	s.cacheBooking(ctx, rec)
	if rec.IdempotencyKey != "" {
		s.rdb.Set(ctx, idemKey(rec.IdempotencyKey), rec.ID, s.ttl)
	}
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) LoadRates(ctx context.Context) (model.RateSet, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, ratesKey()).Bytes()
	if err == nil {
		var rates model.RateSet
		if json.Unmarshal(data, &rates) == nil {
			return rates, nil
		}
	}

	// Cache miss: read from primary.
	rates, err := s.primary.LoadRates(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheRates(ctx, rates)
	return rates, nil
}

func (s *CachedStore) GetBooking(ctx context.Context, id string) (*model.BookingRecord, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, bookingKey(id)).Bytes()
	if err == nil {
		var rec model.BookingRecord
		if json.Unmarshal(data, &rec) == nil {
			return &rec, nil
		}
	}

	// Cache miss.
	rec, err := s.primary.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheBooking(ctx, rec)
	return rec, nil
}

func (s *CachedStore) FindBookingByIdempotencyKey(ctx context.Context, key string) (*model.BookingRecord, error) {
	// Try cache via key→reference mapping.
	id, err := s.rdb.Get(ctx, idemKey(key)).Result()
	if err == nil {
		return s.GetBooking(ctx, id)
	}

	// Cache miss.
	rec, err := s.primary.FindBookingByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}

	// Cache both the booking and the key→reference mapping.
	s.cacheBooking(ctx, rec)
	s.rdb.Set(ctx, idemKey(key), rec.ID, s.ttl)
	return rec, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListBookings(ctx context.Context) ([]model.BookingRecord, error) {
	return s.primary.ListBookings(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheRates(ctx context.Context, rates model.RateSet) {
	if data, err := json.Marshal(rates); err == nil {
		s.rdb.Set(ctx, ratesKey(), data, s.ttl)
	}
}

func (s *CachedStore) cacheBooking(ctx context.Context, rec *model.BookingRecord) {
	if data, err := json.Marshal(rec); err == nil {
		s.rdb.Set(ctx, bookingKey(rec.ID), data, s.ttl)
	}
}

func ratesKey() string            { return "rates:current" }
func bookingKey(id string) string { return fmt.Sprintf("booking:%s", id) }
func idemKey(key string) string   { return fmt.Sprintf("idem:%s", key) }
