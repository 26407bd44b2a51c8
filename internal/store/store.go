// Package store defines the persistence interface for the booking engine.
// Implementations include PostgreSQL (source of truth), Redis (both as a
// standalone key-value store and as a read-through cache), and in-memory
// (for testing).
package store

import (
	"context"
	"errors"

	"github.com/goldmandi/booking-engine/internal/model"
)

var (
	// ErrNoSavedRates is returned by LoadRates when nothing has been
	// persisted yet. Callers fall back to their configured baselines.
	ErrNoSavedRates = errors.New("store: no saved rates")

	// ErrBookingNotFound is returned when a booking lookup matches nothing.
	ErrBookingNotFound = errors.New("store: booking not found")
)

// Store is the persistence interface. Rate state is overwritten as a whole
// set after every tick; bookings are append-only and never mutated.
type Store interface {
	// --- Rate state ---

	// SaveRates persists the complete snapshot set, replacing any previous one.
	SaveRates(ctx context.Context, rates model.RateSet) error

	// LoadRates returns the last persisted snapshot set, or ErrNoSavedRates.
	LoadRates(ctx context.Context) (model.RateSet, error)

	// --- Append-only bookings ---

	// AppendBooking appends an immutable booking record.
	AppendBooking(ctx context.Context, rec *model.BookingRecord) error

	// ListBookings returns all bookings in append order.
	ListBookings(ctx context.Context) ([]model.BookingRecord, error)

	// GetBooking retrieves a booking by its reference.
	GetBooking(ctx context.Context, id string) (*model.BookingRecord, error)

	// FindBookingByIdempotencyKey retrieves the booking created under the
	// given idempotency key, or ErrBookingNotFound.
	FindBookingByIdempotencyKey(ctx context.Context, key string) (*model.BookingRecord, error)
}
