// Package model defines the core domain types shared across the booking engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Metal identifies a bookable precious metal. The lowercase form is the wire
// and storage representation; ParseMetal accepts the display form too.
type Metal string

const (
	Gold   Metal = "gold"
	Silver Metal = "silver"
)

// ErrUnknownMetal is returned when a metal outside {gold, silver} reaches a
// component that has no defined behavior for it. This indicates a caller bug,
// never user input.
var ErrUnknownMetal = errors.New("model: unknown metal type")

// Metals returns all supported metals in a stable order.
func Metals() []Metal {
	return []Metal{Gold, Silver}
}

// ParseMetal normalizes a metal name ("gold", "Gold", "SILVER", ...) to its
// canonical form.
func ParseMetal(s string) (Metal, error) {
	switch Metal(strings.ToLower(strings.TrimSpace(s))) {
	case Gold:
		return Gold, nil
	case Silver:
		return Silver, nil
	default:
		return "", ErrUnknownMetal
	}
}

// Display returns the human-facing name ("Gold", "Silver").
func (m Metal) Display() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// RateSnapshot is the current simulated price state for one metal at a point
// in time. Price is quoted in the metal's priced unit (gold: per 10 grams,
// silver: per kilogram), in rupees. Change and ChangePercent are measured
// against the fixed baseline price; High and Low track the running extremes
// since startup (or since the state they were restored from).
//
// Invariant: Low <= Price <= High and Price >= 0 at all times.
type RateSnapshot struct {
	Price         decimal.Decimal `json:"price" db:"price"`
	Change        decimal.Decimal `json:"change" db:"change"`
	ChangePercent decimal.Decimal `json:"change_percent" db:"change_percent"`
	High          decimal.Decimal `json:"high" db:"high"`
	Low           decimal.Decimal `json:"low" db:"low"`
}

// RateSet maps each metal to its current snapshot. This is the unit of
// persistence: the whole set is written after every tick and read back once
// at startup.
type RateSet map[Metal]RateSnapshot

// Clone returns an independent copy of the set.
func (rs RateSet) Clone() RateSet {
	out := make(RateSet, len(rs))
	for m, snap := range rs {
		out[m] = snap
	}
	return out
}

// BookingValuation is the computed monetary outcome of a quantity request
// against a current price. It is a pure derivation — no identity, no
// lifecycle, never persisted on its own.
type BookingValuation struct {
	PricePerGram decimal.Decimal `json:"price_per_gram"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Unit         string          `json:"unit"`
}

// StatusConfirmed is the only booking status in the current flow; there is
// no cancellation or modification state machine.
const StatusConfirmed = "confirmed"

// UnitGrams is the display unit for booking quantities. Both metals take
// quantity in grams regardless of their quoted unit.
const UnitGrams = "grams"

// BookingRecord is an immutable record of a confirmed booking. Once created,
// these are never modified or deleted; the store only appends.
type BookingRecord struct {
	ID             string          `json:"id" db:"id"` // display reference, e.g. BKMFB2C10A00X7K2QZ
	FullName       string          `json:"full_name" db:"full_name"`
	Phone          string          `json:"phone" db:"phone"`
	Email          string          `json:"email" db:"email"`
	Metal          Metal           `json:"metal" db:"metal"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"` // grams
	Unit           string          `json:"unit" db:"unit"`
	CurrentPrice   decimal.Decimal `json:"current_price" db:"current_price"` // quoted-unit price captured at submission
	PricePerGram   decimal.Decimal `json:"price_per_gram" db:"price_per_gram"`
	TotalValue     decimal.Decimal `json:"total_value" db:"total_value"`
	Status         string          `json:"status" db:"status"`
	IdempotencyKey string          `json:"idempotency_key,omitempty" db:"idempotency_key"`
	Timestamp      time.Time       `json:"timestamp" db:"timestamp"`
}
