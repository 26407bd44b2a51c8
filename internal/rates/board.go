// Package rates owns the simulated price state. A Board holds one snapshot
// per metal and advances the whole set by one bounded random-walk step per
// tick; a Ticker drives the Board on a fixed cadence.
//
// All monetary values use shopspring/decimal — never float64 for money.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/goldmandi/booking-engine/internal/config"
	"github.com/goldmandi/booking-engine/internal/metrics"
	"github.com/goldmandi/booking-engine/internal/model"
	"github.com/goldmandi/booking-engine/internal/store"
)

// PriceScale is the number of decimal places a walked price keeps.
const PriceScale int32 = 2

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Source yields the uniform randomness driving the walk, one draw in [0, 1)
// per metal per tick. Injectable so walks are reproducible in tests.
type Source interface {
	Float64() float64
}

// defaultSource draws from the shared math/rand/v2 generator.
type defaultSource struct{}

func (defaultSource) Float64() float64 { return rand.Float64() }

// Board is the owned price state for all metals. It is the only mutable
// state in the engine: the Ticker is its single writer, every reader gets
// value copies, and the store write after each tick is best-effort.
type Board struct {
	store  store.Store
	src    Source
	onTick func(model.RateSet)

	mu        sync.RWMutex
	baselines map[model.Metal]decimal.Decimal
	maxFluct  map[model.Metal]decimal.Decimal
	current   model.RateSet
}

// New creates a Board initialized from the configured baselines: for each
// metal, price = high = low = baseline and change = 0. Pass nil src for the
// production randomness source; onTick, if non-nil, receives a copy of the
// full set after every completed tick (used for WebSocket broadcast).
func New(cfg config.RatesConfig, st store.Store, src Source, onTick func(model.RateSet)) (*Board, error) {
	if src == nil {
		src = defaultSource{}
	}

	b := &Board{
		store:     st,
		src:       src,
		onTick:    onTick,
		baselines: make(map[model.Metal]decimal.Decimal, len(cfg.Metals)),
		maxFluct:  make(map[model.Metal]decimal.Decimal, len(cfg.Metals)),
		current:   make(model.RateSet, len(cfg.Metals)),
	}

	for name, mc := range cfg.Metals {
		metal, err := model.ParseMetal(name)
		if err != nil {
			return nil, fmt.Errorf("rates: configured metal %q: %w", name, err)
		}
		baseline := decimal.NewFromFloat(mc.BasePrice)
		b.baselines[metal] = baseline
		b.maxFluct[metal] = decimal.NewFromFloat(mc.MaxFluctuation)
		b.current[metal] = model.RateSnapshot{
			Price: baseline,
			High:  baseline,
			Low:   baseline,
		}
	}
	return b, nil
}

// Restore merges a previously persisted snapshot set over the initialized
// defaults. Persisted values win per metal when present; metals the board
// does not carry are ignored. Called once at startup, before the first tick.
func (b *Board) Restore(persisted model.RateSet) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for metal, snap := range persisted {
		if _, known := b.current[metal]; known {
			b.current[metal] = snap
		}
	}
}

// Tick advances every metal independently by one walk step: a perturbation
// drawn uniformly from [-maxFluctuation/2, +maxFluctuation/2] is added to
// the price, the result is floored at zero, change and changePercent are
// recomputed against the baseline (changePercent is 0 for a zero baseline),
// and high/low are updated via max/min.
//
// The updated set is then persisted through the store; a persistence failure
// is logged and swallowed — in-memory state stays authoritative and the
// failure never propagates to callers.
func (b *Board) Tick(ctx context.Context) {
	b.mu.Lock()
	for metal, snap := range b.current {
		width := b.maxFluct[metal]
		u := decimal.NewFromFloat(b.src.Float64())
		delta := width.Mul(u.Sub(half))

		price := snap.Price.Add(delta).Round(PriceScale)
		if price.IsNegative() {
			price = decimal.Zero
		}

		baseline := b.baselines[metal]
		change := price.Sub(baseline)
		changePercent := decimal.Zero
		if !baseline.IsZero() {
			changePercent = change.Div(baseline).Mul(hundred).Round(PriceScale)
		}

		b.current[metal] = model.RateSnapshot{
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			High:          decimal.Max(snap.High, price),
			Low:           decimal.Min(snap.Low, price),
		}
	}
	updated := b.current.Clone()
	b.mu.Unlock()

	if err := b.store.SaveRates(ctx, updated); err != nil {
		slog.Warn("rate snapshot persist failed", "error", err)
		metrics.PersistenceFailures.WithLabelValues("save_rates").Inc()
	}

	metrics.RateTicksTotal.Inc()
	for metal, snap := range updated {
		metrics.RatePrice.WithLabelValues(string(metal)).Set(snap.Price.InexactFloat64())
	}

	if b.onTick != nil {
		b.onTick(updated)
	}
}

// Snapshot returns a copy of the current snapshot for one metal. The whole
// struct is read under one lock, so callers capture a single point-in-time
// price, never a torn multi-field read.
func (b *Board) Snapshot(metal model.Metal) (model.RateSnapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap, ok := b.current[metal]
	if !ok {
		return model.RateSnapshot{}, fmt.Errorf("rates: %w: %q", model.ErrUnknownMetal, metal)
	}
	return snap, nil
}

// Snapshots returns a copy of the full current set.
func (b *Board) Snapshots() model.RateSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current.Clone()
}

// Metals returns the metals this board carries, in model order.
func (b *Board) Metals() []model.Metal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Metal, 0, len(b.current))
	for _, m := range model.Metals() {
		if _, ok := b.current[m]; ok {
			out = append(out, m)
		}
	}
	return out
}
