package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dbseed/internal/config"
	"dbseed/internal/metrics"
	"dbseed/internal/metrics/datadog"
	"dbseed/internal/metrics/prompush"
	"dbseed/internal/seed"
	"dbseed/internal/seeder"
	"dbseed/internal/storage"

	// register all backends with the storage registry.
	// config specifies which to use but we build in support for all of them.
	_ "dbseed/internal/storage/all"
)

// main is the entry point for the seed binary. It loads the config,
// optionally initializes a metrics backend, and executes one seeding run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
		check             bool
	)

	flag.StringVar(&cfgPath, "config", "configs/seed.json", "config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none; falls back to METRICS_BACKEND, then none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&check, "check", false, "read-only: report which catalog values are already present, insert nothing")
	verbose := flag.Bool("v", false, "enable verbose logs")

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
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(cfg.Job, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	repo, closeRepo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeRepo()

	if *verbose {
		log.Printf("run: job=%s storage=%s table=%s staging=%s",
			cfg.Job, cfg.Storage.Kind, cfg.Storage.DB.Table, cfg.Storage.DB.StagingTable)
	}

	if check {
		rep, err := seeder.Check(ctx, repo, seed.Models())
		if err != nil {
			log.Fatalf("check: %v", err)
		}
		log.Printf("check: present=%d missing=%d", len(rep.Present), len(rep.Missing))
		for _, name := range rep.Missing {
			fmt.Printf("missing\t%s\n", name)
		}
		for _, name := range rep.Present {
			fmt.Printf("present\t%s\n", name)
		}
		return
	}

	if _, err := seeder.Run(ctx, cfg.Job, repo, seed.Models()); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// resolveMetricsBackend picks the backend name: the flag wins, then the
// METRICS_BACKEND environment variable, then "none".
func resolveMetricsBackend(flagVal, envVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if envVal != "" {
		return envVal
	}
	return "none"
}

// setupMetrics decides the metrics backend: flag, then env, then none.
func setupMetrics(job, backendFlg, gwURLFlg, ddAddrFlg string, verbose bool) {
	backendName := resolveMetricsBackend(backendFlg, os.Getenv("METRICS_BACKEND"))
	switch backendName {
	case "pushgateway":
		gwURL := gwURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%v job=%v", gwURL, job)
		metrics.SetBackend(b)

	case "datadog":
		addr := ddAddrFlg
		if addr == "" {
			addr = os.Getenv("DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "dbseed."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%v job=%v", addr, job)
		metrics.SetBackend(b)

	case "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
