package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/goldmandi/booking-engine/internal/booking"
	"github.com/goldmandi/booking-engine/internal/config"
	"github.com/goldmandi/booking-engine/internal/metrics"
	"github.com/goldmandi/booking-engine/internal/rates"
	"github.com/goldmandi/booking-engine/internal/store"
	"github.com/goldmandi/booking-engine/internal/storefront"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	dbURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")

	switch {
	case dbURL != "":
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, 30*time.Second)
			slog.Info("Redis cache enabled")
		}
	case redisURL != "":
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewRedisStore(rdb)
		slog.Info("connected to Redis")
	default:
		slog.Warn("DATABASE_URL and REDIS_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- WebSocket hub ---
	wsHub := storefront.NewWSHub()
	go wsHub.Run()

	// --- Rate board ---
	board, err := rates.New(cfg.Rates, st, nil, wsHub.BroadcastRates)
	if err != nil {
		slog.Error("rate board init failed", "err", err)
		os.Exit(1)
	}

	// Restore the last persisted snapshot so a restart continues the walk.
	if persisted, err := st.LoadRates(context.Background()); err == nil {
		board.Restore(persisted)
		slog.Info("restored persisted rates", "metals", len(persisted))
	} else if !errors.Is(err, store.ErrNoSavedRates) {
		slog.Warn("rate restore failed", "error", err)
	}

	ticker := rates.NewTicker(board, cfg.Rates.TickInterval)
	ticker.Start(context.Background())

	// --- Booking assembler ---
	asm, err := booking.NewAssembler(cfg)
	if err != nil {
		slog.Error("booking assembler init failed", "err", err)
		os.Exit(1)
	}

	// --- Storefront service ---
	svc := storefront.NewService(board, st, asm, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for the storefront widget's cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"booking-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time rate updates.
		r.Get("/ws", wsHub.HandleWS)

		// Rate board.
		r.Get("/rates", svc.ListRates)
		r.Get("/rates/{metal}", svc.GetRate)

		// Booking flow.
		r.Post("/quote", svc.Quote)
		r.Post("/bookings", svc.CreateBooking)
		r.Get("/bookings", svc.ListBookings)
		r.Get("/bookings/{reference}", svc.GetBooking)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("booking-engine listening", "port", port, "tick_interval", cfg.Rates.TickInterval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: stop ticking first so no tick races the close.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down booking-engine...")
	ticker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("booking-engine stopped")
}
