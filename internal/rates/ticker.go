package rates

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Ticker invokes Board.Tick on a fixed period. It owns no price state:
// pausing gates further mutation without touching the board's accumulated
// high/low, and stopping simply ends the loop.
type Ticker struct {
	board    *Board
	interval time.Duration

	mu     sync.Mutex
	paused bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker creates a ticker driving the given board.
func NewTicker(board *Board, interval time.Duration) *Ticker {
	return &Ticker{board: board, interval: interval}
}

// Start launches the tick loop in its own goroutine. Calling Start on a
// running ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	slog.Info("rate ticker started", "interval", t.interval)
	go t.run(ctx, done)
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.Paused() {
				continue
			}
			t.board.Tick(ctx)
		}
	}
}

// Pause stops further ticks without stopping the loop or resetting any
// board state.
func (t *Ticker) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume re-enables ticking after a Pause.
func (t *Ticker) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Paused reports whether ticking is currently suspended.
func (t *Ticker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Stop ends the tick loop and waits for it to exit. The ticker can be
// started again afterwards.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
