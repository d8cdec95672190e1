package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/store"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product .csv or .xlsx file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	backend, err := store.Open(ctx, cfg.DBDriver, cfg.DBConnString, nil)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer backend.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	var imp *importer.Importer
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		imp = importer.NewCSVImporter(f, backend.Products)
	case ".xlsx":
		info, err := f.Stat()
		if err != nil {
			log.Fatalf("stat file: %v", err)
		}
		imp, err = importer.NewXLSXImporter(f, info.Size(), backend.Products)
		if err != nil {
			log.Fatalf("read workbook: %v", err)
		}
	default:
		log.Fatalf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(filePath))
	}

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
