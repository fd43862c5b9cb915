package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"dbseed/internal/config"
	"dbseed/internal/export"
	"dbseed/internal/storage"

	_ "dbseed/internal/storage/all"
)

// main dumps the target table (id + name, ordered by id) to CSV or JSON.
func main() {
	var (
		cfgPath string
		format  string
		outPath string
	)

	flag.StringVar(&cfgPath, "config", "configs/seed.json", "config JSON path")
	flag.StringVar(&format, "format", "csv", "output format: csv or json")
	flag.StringVar(&outPath, "out", "-", "output file path, or - for stdout")

	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid: %v", cfgPath)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		fatalf("%v", err)
	}

	out := os.Stdout
	if outPath != "-" {
		out, err = os.Create(outPath)
		if err != nil {
			fatalf("create output: %v", err)
		}
		defer out.Close()
	}

	ctx := context.Background()
	repo, closeRepo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeRepo()

	rows, err := repo.TargetRows(ctx)
	if err != nil {
		log.Fatalf("read target rows: %v", err)
	}

	db := cfg.Storage.DB
	if err := export.Write(out, f, db.IDColumn, db.NameColumn, rows); err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("export: rows=%d format=%s out=%s", len(rows), f, outPath)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
