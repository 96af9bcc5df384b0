package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/geomatch/internal/pkg/config"
)

var migrations = []string{
	"migrations/001_candidates.sql",
	"migrations/002_seed_runs.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("geomatch-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		apply(ctx, pool, migrations)
		log.Println("all migrations applied")
	case "down":
		down := make([]string, 0, len(migrations))
		for i := len(migrations) - 1; i >= 0; i-- {
			down = append(down, downFile(migrations[i]))
		}
		apply(ctx, pool, down)
		log.Println("all migrations rolled back")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// downFile maps 001_x.sql to 001_x.down.sql.
func downFile(up string) string {
	return up[:len(up)-len(".sql")] + ".down.sql"
}

func apply(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}
}
