package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/goldmandi/booking-engine/internal/model"
)

// Key names are part of the persisted contract shared with earlier
// deployments of the storefront; do not rename.
func currentRatesKey() string { return "currentRates" }
func bookingListKey() string  { return "bookings" }

// RedisStore implements Store directly on Redis: the rate set lives under a
// single JSON value and bookings form an append-only list (RPUSH). Lookups
// scan the list, which is fine at storefront volumes; use PostgresStore when
// the booking ledger needs real indexing.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SaveRates(ctx context.Context, rates model.RateSet) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("marshal rates: %w", err)
	}
	return s.rdb.Set(ctx, currentRatesKey(), data, 0).Err()
}

func (s *RedisStore) LoadRates(ctx context.Context) (model.RateSet, error) {
	data, err := s.rdb.Get(ctx, currentRatesKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSavedRates
	}
	if err != nil {
		return nil, err
	}

	var rates model.RateSet
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("unmarshal rates: %w", err)
	}
	return rates, nil
}

func (s *RedisStore) AppendBooking(ctx context.Context, rec *model.BookingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	return s.rdb.RPush(ctx, bookingListKey(), data).Err()
}

func (s *RedisStore) ListBookings(ctx context.Context) ([]model.BookingRecord, error) {
	items, err := s.rdb.LRange(ctx, bookingListKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	bookings := make([]model.BookingRecord, 0, len(items))
	for _, item := range items {
		var rec model.BookingRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal booking: %w", err)
		}
		bookings = append(bookings, rec)
	}
	return bookings, nil
}

func (s *RedisStore) GetBooking(ctx context.Context, id string) (*model.BookingRecord, error) {
	return s.findBooking(ctx, func(rec *model.BookingRecord) bool {
		return rec.ID == id
	}, id)
}

func (s *RedisStore) FindBookingByIdempotencyKey(ctx context.Context, key string) (*model.BookingRecord, error) {
	return s.findBooking(ctx, func(rec *model.BookingRecord) bool {
		return rec.IdempotencyKey == key
	}, key)
}

func (s *RedisStore) findBooking(ctx context.Context, match func(*model.BookingRecord) bool, what string) (*model.BookingRecord, error) {
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if match(&bookings[i]) {
			return &bookings[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, what)
}
