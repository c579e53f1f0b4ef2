package main

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"

	"pos-admin/internal/adapters/cli"
	"pos-admin/internal/adapters/repl"
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
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx := context.Background()
	api := backend.New(cfg.APIURL, cfg.HTTPTimeout, logger)

	var heldCarts core.HeldCartService
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		heldCarts = core.NewHeldCartService(pool)
	} else {
		logger.Info("DATABASE_URL not set; held carts disabled")
	}

	var agent ai.AgentService
	if cfg.OpenAIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIKey)
	} else {
		logger.Info("OPENAI_API_KEY not set; cart assistant disabled")
	}

	svc := app.NewAppService(api, heldCarts, agent, app.Options{
		SearchDebounce: cfg.SearchDebounce,
		NumericPolicy:  cfg.NumericPolicy,
	}, logger)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
