package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "pos-admin/internal/adapters/web"
	"pos-admin/internal/ai"
	"pos-admin/internal/app"
	"pos-admin/internal/backend"
	"pos-admin/internal/config"
	"pos-admin/internal/core"
	"pos-admin/internal/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()
	// The backend and the admin API exchange money and quantities as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set for the admin server")
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := backend.New(cfg.APIURL, cfg.HTTPTimeout, logger)

	var heldCarts core.HeldCartService
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		heldCarts = core.NewHeldCartService(pool)
	} else {
		logger.Warn("DATABASE_URL not set; held carts disabled")
	}

	var agent ai.AgentService
	if cfg.OpenAIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIKey)
	} else {
		logger.Warn("OPENAI_API_KEY not set; cart assistant disabled")
	}

	svc := app.NewAppService(api, heldCarts, agent, app.Options{
		SearchDebounce: cfg.SearchDebounce,
		NumericPolicy:  cfg.NumericPolicy,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort, "backend", cfg.APIURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	logger.Info("server stopped")
}
