package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rental-intel/config"
	"rental-intel/scheduler"
	"rental-intel/scraper/airbnb"
	"rental-intel/services"
	"rental-intel/storage"
	"rental-intel/utils"
	"rental-intel/web"
)

const usage = `Usage: rental-intel <command> [flags]

Commands:
  scrape   collect Airbnb listings into the listing store
  detect   run one owner-resolution pass
  report   print the ranked owner intelligence summary
  export   write the owner summary to CSV
  serve    expose the read-only intelligence API over HTTP
  watch    run detection on a fixed interval

Flags:
  --json   emit machine-readable JSON on stdout (detect, report)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	jsonOut := flags.Bool("json", false, "emit machine-readable JSON on stdout")
	_ = flags.Parse(os.Args[2:])

	logger := utils.NewLogger()
	if *jsonOut {
		logger = utils.NewLoggerAt(utils.LevelWarn)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	switch command {
	case "scrape":
		runScrape(ctx, cfg, store, logger)
	case "detect":
		runDetect(ctx, cfg, store, logger, *jsonOut)
	case "report":
		runReport(ctx, cfg, store, logger, *jsonOut)
	case "export":
		runExport(ctx, cfg, store, logger)
	case "serve":
		runServe(cfg, store, logger)
	case "watch":
		runWatch(ctx, cfg, store, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
}

func runScrape(ctx context.Context, cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	scraper := airbnb.New(cfg, logger)
	rawListings, err := scraper.Scrape()
	if err != nil {
		logger.Error("Airbnb scrape failed: %v", err)
	}
	if len(rawListings) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}

	if err := store.UpsertListings(ctx, rawListings); err != nil {
		logger.Error("Listing store write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Stored %d listings (table: listings)", len(rawListings))
}

func runDetect(ctx context.Context, cfg *config.Config, store *storage.Store, logger *utils.Logger, jsonOut bool) {
	if cfg.RedisURL != "" {
		lock, err := storage.NewRunLock(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Run lock unavailable: %v", err)
			os.Exit(1)
		}
		defer lock.Close()

		ok, err := lock.Acquire(ctx)
		if err != nil {
			logger.Error("Run lock acquire failed: %v", err)
			os.Exit(1)
		}
		if !ok {
			logger.Error("Another detection run is in progress — exiting")
			os.Exit(1)
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.Warn("Run lock release failed: %v", err)
			}
		}()
	}

	resolver := services.NewResolver(store, store, store, logger)
	stats, _, err := resolver.Run(ctx)
	if err != nil {
		logger.Error("Detection run failed: %v", err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			logger.Error("Encode stats: %v", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("\nDetection complete\n")
	fmt.Printf("  Total owners   : %d\n", stats.TotalOwners)
	fmt.Printf("  Multi-property : %d\n", stats.MultiProperty)
	fmt.Printf("  New            : %d\n", stats.NewOwners)
	fmt.Printf("  Updated        : %d\n", stats.UpdatedOwners)
	fmt.Printf("  Failed         : %d\n", stats.FailedClusters)
}

func runReport(ctx context.Context, cfg *config.Config, store *storage.Store, logger *utils.Logger, jsonOut bool) {
	reportSvc := services.NewReportService(store, store, logger, cfg.ReportLimit)
	report, err := reportSvc.Generate(ctx)
	if err != nil {
		logger.Error("Report generation failed: %v", err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("Encode report: %v", err)
			os.Exit(1)
		}
		return
	}

	reportSvc.Print(report)
}

func runExport(ctx context.Context, cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	owners, err := store.TopOwnersByRisk(ctx, cfg.ReportLimit)
	if err != nil {
		logger.Error("Owner fetch failed: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteOwners(owners); err != nil {
		logger.Error("CSV write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Exported %d owners to %s", len(owners), cfg.CSVOutputPath)
}

func runServe(cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	reportSvc := services.NewReportService(store, store, logger, cfg.ReportLimit)
	server := web.NewServer(reportSvc, store, logger)
	if err := server.ListenAndServe(cfg.HTTPAddr); err != nil {
		logger.Error("HTTP server failed: %v", err)
		os.Exit(1)
	}
}

func runWatch(ctx context.Context, cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	resolver := services.NewResolver(store, store, store, logger)
	sched := scheduler.New(resolver, logger, cfg.DetectIntervalHours)
	if err := sched.Start(ctx); err != nil {
		logger.Error("Scheduler failed to start: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")
}
