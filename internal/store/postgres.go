package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/goldmandi/booking-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
//
// Expected schema:
//
//	current_rates (metal TEXT PRIMARY KEY, price NUMERIC, change NUMERIC,
//	               change_percent NUMERIC, high NUMERIC, low NUMERIC,
//	               updated_at TIMESTAMPTZ)
//	bookings      (id TEXT PRIMARY KEY, full_name TEXT, phone TEXT,
//	               email TEXT, metal TEXT, quantity NUMERIC, unit TEXT,
//	               current_price NUMERIC, price_per_gram NUMERIC,
//	               total_value NUMERIC, status TEXT, idempotency_key TEXT,
//	               created_at TIMESTAMPTZ)
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveRates(ctx context.Context, rates model.RateSet) error {
	for metal, snap := range rates {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO current_rates (metal, price, change, change_percent, high, low, updated_at)
			 VALUES ($1, $2::NUMERIC, $3::NUMERIC, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, now())
			 ON CONFLICT (metal) DO UPDATE SET
			     price = EXCLUDED.price,
			     change = EXCLUDED.change,
			     change_percent = EXCLUDED.change_percent,
			     high = EXCLUDED.high,
			     low = EXCLUDED.low,
			     updated_at = now()`,
			string(metal),
			snap.Price.String(), snap.Change.String(), snap.ChangePercent.String(),
			snap.High.String(), snap.Low.String(),
		)
		if err != nil {
			return fmt.Errorf("save rates for %s: %w", metal, err)
		}
	}
	return nil
}

func (s *PostgresStore) LoadRates(ctx context.Context) (model.RateSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT metal, price::TEXT, change::TEXT, change_percent::TEXT,
		        high::TEXT, low::TEXT
		 FROM current_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(model.RateSet)
	for rows.Next() {
		var metal string
		var priceS, changeS, pctS, highS, lowS string
		if err := rows.Scan(&metal, &priceS, &changeS, &pctS, &highS, &lowS); err != nil {
			return nil, err
		}

		var snap model.RateSnapshot
		snap.Price, _ = decimal.NewFromString(priceS)
		snap.Change, _ = decimal.NewFromString(changeS)
		snap.ChangePercent, _ = decimal.NewFromString(pctS)
		snap.High, _ = decimal.NewFromString(highS)
		snap.Low, _ = decimal.NewFromString(lowS)
		rates[model.Metal(metal)] = snap
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ErrNoSavedRates
	}
	return rates, nil
}

func (s *PostgresStore) AppendBooking(ctx context.Context, rec *model.BookingRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bookings (id, full_name, phone, email, metal, quantity, unit,
		                       current_price, price_per_gram, total_value, status,
		                       idempotency_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7,
		         $8::NUMERIC, $9::NUMERIC, $10::NUMERIC, $11, $12, $13)`,
		rec.ID, rec.FullName, rec.Phone, rec.Email, string(rec.Metal),
		rec.Quantity.String(), rec.Unit,
		rec.CurrentPrice.String(), rec.PricePerGram.String(), rec.TotalValue.String(),
		rec.Status, rec.IdempotencyKey, rec.Timestamp,
	)
	return err
}

func (s *PostgresStore) ListBookings(ctx context.Context) ([]model.BookingRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, phone, email, metal,
		        quantity::TEXT, unit,
		        current_price::TEXT, price_per_gram::TEXT, total_value::TEXT,
		        status, idempotency_key, created_at
		 FROM bookings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (*model.BookingRecord, error) {
	return s.getBookingWhere(ctx, `id = $1`, id)
}

func (s *PostgresStore) FindBookingByIdempotencyKey(ctx context.Context, key string) (*model.BookingRecord, error) {
	return s.getBookingWhere(ctx, `idempotency_key = $1`, key)
}

func (s *PostgresStore) getBookingWhere(ctx context.Context, where, arg string) (*model.BookingRecord, error) {
	var rec model.BookingRecord
	var metal string
	var qtyS, priceS, perGramS, totalS string

	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, phone, email, metal,
		        quantity::TEXT, unit,
		        current_price::TEXT, price_per_gram::TEXT, total_value::TEXT,
		        status, idempotency_key, created_at
		 FROM bookings WHERE `+where+` LIMIT 1`, arg).
		Scan(&rec.ID, &rec.FullName, &rec.Phone, &rec.Email, &metal,
			&qtyS, &rec.Unit,
			&priceS, &perGramS, &totalS,
			&rec.Status, &rec.IdempotencyKey, &rec.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", arg, err)
	}

	rec.Metal = model.Metal(metal)
	rec.Quantity, _ = decimal.NewFromString(qtyS)
	rec.CurrentPrice, _ = decimal.NewFromString(priceS)
	rec.PricePerGram, _ = decimal.NewFromString(perGramS)
	rec.TotalValue, _ = decimal.NewFromString(totalS)

	return &rec, nil
}

func scanBookings(rows pgx.Rows) ([]model.BookingRecord, error) {
	var bookings []model.BookingRecord
	for rows.Next() {
		var rec model.BookingRecord
		var metal string
		var qtyS, priceS, perGramS, totalS string

		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.Phone, &rec.Email, &metal,
			&qtyS, &rec.Unit,
			&priceS, &perGramS, &totalS,
			&rec.Status, &rec.IdempotencyKey, &rec.Timestamp); err != nil {
			return nil, err
		}

		rec.Metal = model.Metal(metal)
		rec.Quantity, _ = decimal.NewFromString(qtyS)
		rec.CurrentPrice, _ = decimal.NewFromString(priceS)
		rec.PricePerGram, _ = decimal.NewFromString(perGramS)
		rec.TotalValue, _ = decimal.NewFromString(totalS)

		bookings = append(bookings, rec)
	}
	return bookings, rows.Err()
}
