// purge-held-carts deletes held carts older than a cutoff. Carts parked at the
// till and never resumed would otherwise pile up in the local database.
//
// Usage: go run ./cmd/purge-held-carts [max-age, default 24h]
package main

import (
	"context"
	"log"
	"os"
	"time"

	"pos-admin/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	maxAge := 24 * time.Hour
	if len(os.Args) > 1 {
		d, err := time.ParseDuration(os.Args[1])
		if err != nil || d <= 0 {
			log.Fatalf("Invalid max age %q: expected a positive duration such as 12h", os.Args[1])
		}
		maxAge = d
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	cutoff := time.Now().Add(-maxAge)
	log.Printf("Removing held carts created before %s...", cutoff.Format(time.RFC3339))
	tag, err := tx.Exec(ctx, "DELETE FROM held_carts WHERE created_at < $1", cutoff)
	if err != nil {
		log.Fatalf("Failed to delete held carts: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Printf("Done. %d held cart(s) removed; their lines went with them.", tag.RowsAffected())
}
