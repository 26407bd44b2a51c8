// Package storefront provides the HTTP handlers and WebSocket stream for
// the live rate board and the booking flow.
//
// All monetary values use shopspring/decimal — never float64 for money.
package storefront

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldmandi/booking-engine/internal/booking"
	"github.com/goldmandi/booking-engine/internal/metrics"
	"github.com/goldmandi/booking-engine/internal/model"
	"github.com/goldmandi/booking-engine/internal/rates"
	"github.com/goldmandi/booking-engine/internal/store"
)

// Service handles storefront operations. Uses a mutex for serialized
// booking creation (single-instance). For horizontal scaling, replace
// with distributed locking or database-level idempotency.
type Service struct {
	board     *rates.Board
	store     store.Store
	assembler *booking.Assembler
	mu        sync.Mutex
	wsHub     *WSHub // optional WebSocket hub for real-time broadcasts
}

// NewService creates a new storefront service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(board *rates.Board, st store.Store, asm *booking.Assembler, hub *WSHub) *Service {
	return &Service{
		board:     board,
		store:     st,
		assembler: asm,
		wsHub:     hub,
	}
}

// --- Request/Response types ---

// QuoteRequest is the JSON body for POST /api/v1/quote.
type QuoteRequest struct {
	MetalType string `json:"metal_type"`
	Quantity  string `json:"quantity"` // grams, as entered in the form
}

// QuoteResponse is the JSON body returned from POST /api/v1/quote.
type QuoteResponse struct {
	Metal        model.Metal     `json:"metal"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	PricePerGram decimal.Decimal `json:"price_per_gram"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Unit         string          `json:"unit"`
}

// --- HTTP Handlers ---

// ListRates handles GET /api/v1/rates
func (s *Service) ListRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.board.Snapshots())
}

// GetRate handles GET /api/v1/rates/{metal}
func (s *Service) GetRate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "metal")

	metal, err := model.ParseMetal(name)
	if err != nil {
		writeError(w, "unknown metal: "+name, http.StatusNotFound)
		return
	}
	snap, err := s.board.Snapshot(metal)
	if err != nil {
		writeError(w, "unknown metal: "+name, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// Quote handles POST /api/v1/quote
// Computes the valuation the booking form previews before submission.
func (s *Service) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	metal, err := model.ParseMetal(req.MetalType)
	if err != nil {
		writeError(w, "unknown metal: "+req.MetalType, http.StatusBadRequest)
		return
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil || !qty.IsPositive() {
		writeError(w, "quantity must be a positive number", http.StatusBadRequest)
		return
	}

	snap, err := s.board.Snapshot(metal)
	if err != nil {
		writeError(w, "unknown metal: "+req.MetalType, http.StatusNotFound)
		return
	}

	val, err := booking.ComputeValuation(metal, qty, snap.Price)
	if err != nil {
		slog.Error("quote valuation failed", "metal", metal, "err", err)
		writeError(w, "internal error: valuation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(QuoteResponse{
		Metal:        metal,
		Quantity:     qty,
		CurrentPrice: snap.Price,
		PricePerGram: val.PricePerGram,
		TotalValue:   val.TotalValue,
		Unit:         val.Unit,
	})
}

// CreateBooking handles POST /api/v1/bookings
// Validates the form, prices the booking at the current rate, appends it
// to the booking list, and broadcasts the confirmation.
func (s *Service) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Serialize booking creation.
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-submit guard: a replayed Idempotency-Key returns the record
	// the first submission produced.
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		if existing, err := s.store.FindBookingByIdempotencyKey(ctx, idemKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(existing)
			return
		}
	} else {
		idemKey = uuid.New().String()
	}

	// Price the booking at the currently displayed rate. A metal that does
	// not parse becomes a field error inside Assemble.
	var currentPrice decimal.Decimal
	if metal, err := model.ParseMetal(req.MetalType); err == nil {
		if snap, err := s.board.Snapshot(metal); err == nil {
			currentPrice = snap.Price
		}
	}

	rec, fieldErrs, err := s.assembler.Assemble(req, currentPrice)
	if err != nil {
		slog.Error("booking assembly failed", "err", err)
		writeError(w, "internal error: booking assembly failed", http.StatusInternalServerError)
		return
	}
	if len(fieldErrs) > 0 {
		for field := range fieldErrs {
			metrics.ValidationFailures.WithLabelValues(field).Inc()
		}
		writeFieldErrors(w, fieldErrs)
		return
	}

	rec.IdempotencyKey = idemKey

	// Persistence is best-effort: the booking is confirmed to the caller
	// even when the append fails.
	if err := s.store.AppendBooking(ctx, rec); err != nil {
		slog.Warn("booking persist failed", "reference", rec.ID, "error", err)
		metrics.PersistenceFailures.WithLabelValues("append_booking").Inc()
	}

	metrics.BookingsTotal.WithLabelValues(string(rec.Metal)).Inc()
	metrics.BookingValue.Observe(rec.TotalValue.InexactFloat64())

	slog.Info("booking confirmed",
		"reference", rec.ID,
		"metal", rec.Metal,
		"quantity", rec.Quantity.String(),
		"total_value", rec.TotalValue.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:       "booking_confirmed",
			Reference:  rec.ID,
			Metal:      string(rec.Metal),
			TotalValue: rec.TotalValue.String(),
			Message:    "Booking confirmed. Reference: " + rec.ID,
			Severity:   "success",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

// ListBookings handles GET /api/v1/bookings
// Returns all bookings in append order.
func (s *Service) ListBookings(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListBookings(r.Context())
	if err != nil {
		writeError(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.BookingRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetBooking handles GET /api/v1/bookings/{reference}
func (s *Service) GetBooking(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	rec, err := s.store.GetBooking(r.Context(), ref)
	if err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			writeError(w, "booking not found: "+ref, http.StatusNotFound)
			return
		}
		writeError(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeFieldErrors writes collected validation failures as a 400 response.
func writeFieldErrors(w http.ResponseWriter, errs booking.FieldErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]booking.FieldErrors{"errors": errs})
}
