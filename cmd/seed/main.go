package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/seed"
	"storefront/internal/store"
)

func main() {
	var fake int
	flag.IntVar(&fake, "fake", 0, "Also insert N randomly generated products")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.DBDriver, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer backend.Close()

	n, err := seed.Apply(ctx, backend.Products)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	logger.Printf("seeded %d catalog products", n)

	if fake > 0 {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		n, err := seed.ApplyFake(ctx, backend.Products, fake, rnd)
		if err != nil {
			logger.Fatalf("seed fake products: %v", err)
		}
		logger.Printf("seeded %d fake products", n)
	}
}
