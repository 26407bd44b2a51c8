// Package booking implements the booking pipeline: field validation,
// valuation math, reference generation, and assembly of immutable booking
// records. Everything here is pure computation against the configured rules;
// persistence and transport live elsewhere.
//
// All monetary values use shopspring/decimal — never float64 for money.
package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldmandi/booking-engine/internal/config"
	"github.com/goldmandi/booking-engine/internal/model"
)

// Request carries raw form input exactly as submitted. Every field is a
// string; numeric parsing is part of validation, not decoding.
type Request struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	MetalType string `json:"metal_type"`
	Quantity  string `json:"quantity"`
}

// FieldErrors maps a submitted field name to its validation message.
type FieldErrors map[string]string

// Assembler validates raw booking submissions and turns them into immutable
// booking records.
type Assembler struct {
	validator *Validator
	limits    map[model.Metal]config.MetalConfig
	now       func() time.Time
}

// NewAssembler builds an Assembler from the engine configuration.
func NewAssembler(cfg *config.Config) (*Assembler, error) {
	v, err := NewValidator(cfg.Booking.Fields)
	if err != nil {
		return nil, err
	}
	limits := make(map[model.Metal]config.MetalConfig, len(cfg.Rates.Metals))
	for name, mc := range cfg.Rates.Metals {
		metal, err := model.ParseMetal(name)
		if err != nil {
			return nil, fmt.Errorf("booking: configured metal %q: %w", name, err)
		}
		limits[metal] = mc
	}
	return &Assembler{validator: v, limits: limits, now: time.Now}, nil
}

// Assemble runs the full validation pipeline over a submission and, on
// success, returns the complete booking record: valuation computed at the
// captured price, a fresh reference, the creation instant, and status
// "confirmed".
//
// Every field problem is collected and returned together in FieldErrors, so
// the caller can display all of them at once. A non-nil error is reserved
// for caller bugs and never describes bad user input.
func (a *Assembler) Assemble(req Request, currentPrice decimal.Decimal) (*model.BookingRecord, FieldErrors, error) {
	errs := FieldErrors{}

	checks := []struct {
		field string
		kind  FieldKind
		value string
	}{
		{"full_name", FieldName, req.FullName},
		{"phone", FieldPhone, req.Phone},
		{"email", FieldEmail, req.Email},
		{"quantity", FieldQuantity, req.Quantity},
	}
	for _, c := range checks {
		msg, err := a.validator.Validate(c.kind, c.value)
		if err != nil {
			return nil, nil, err
		}
		if msg != "" {
			errs[c.field] = msg
		}
	}

	var metal model.Metal
	if strings.TrimSpace(req.MetalType) == "" {
		errs["metal_type"] = "Metal type is required"
	} else if m, err := model.ParseMetal(req.MetalType); err != nil {
		errs["metal_type"] = "Select a valid metal"
	} else {
		metal = m
	}

	// The per-metal bounds need both a parsed quantity and a known metal.
	var qty decimal.Decimal
	if _, bad := errs["quantity"]; !bad {
		f, err := strconv.ParseFloat(strings.TrimSpace(req.Quantity), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs["quantity"] = "Quantity must be a number"
		} else {
			qty = decimal.NewFromFloat(f)
			if limit, ok := a.limits[metal]; ok && metal != "" {
				if f < limit.MinQuantity {
					errs["quantity"] = fmt.Sprintf("Minimum %s grams per booking", formatAmount(limit.MinQuantity))
				} else if limit.MaxQuantity > 0 && f > limit.MaxQuantity {
					errs["quantity"] = fmt.Sprintf("Maximum %s grams per booking for %s",
						formatAmount(limit.MaxQuantity), metal.Display())
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	valuation, err := ComputeValuation(metal, qty, currentPrice)
	if err != nil {
		return nil, nil, err
	}

	now := a.now()
	rec := &model.BookingRecord{
		ID:           NewReference(now),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Metal:        metal,
		Quantity:     qty,
		Unit:         valuation.Unit,
		CurrentPrice: currentPrice,
		PricePerGram: valuation.PricePerGram,
		TotalValue:   valuation.TotalValue,
		Status:       model.StatusConfirmed,
		Timestamp:    now.UTC(),
	}
	return rec, nil, nil
}
