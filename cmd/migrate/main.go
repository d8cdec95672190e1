package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
)

func main() {
	var down, status bool
	flag.BoolVar(&down, "down", false, "Revert all migrations instead of applying them")
	flag.BoolVar(&status, "status", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.DBDriver == "sqlite" {
		logger.Println("sqlite schema is applied when the store opens; nothing to do")
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if status {
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatalf("read schema version: %v", err)
		}
		logger.Printf("schema version %d (dirty=%t)", version, dirty)
		return
	}

	if down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
		logger.Println("migrations reverted")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
