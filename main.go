package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reloadradar/config"
	"reloadradar/models"
	"reloadradar/scraper/fetch"
	"reloadradar/scraper/suppliers"
	"reloadradar/services"
	"reloadradar/storage"
	"reloadradar/utils"

	cli "github.com/jawher/mow.cli"
)

func main() {
	app := cli.App("reloadradar", "Reloading component price tracker")

	app.Command("scrape", "Fetch supplier listings, snapshot them and record price changes", func(cmd *cli.Cmd) {
		runCommand(cmd, models.ModeFetch)
	})
	app.Command("replay", "Re-run matching and recording from the newest snapshots, without the network", func(cmd *cli.Cmd) {
		runCommand(cmd, models.ModeReplay)
	})
	app.Command("migrate", "Create the catalog tables", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			cfg, logger := bootstrap()
			store := openStore(cfg, logger)
			defer store.Close()

			if err := store.CreateTables(context.Background()); err != nil {
				logger.Error("Migration failed: %v", err)
				cli.Exit(1)
			}
		}
	})

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cli.Cmd, mode models.RunMode) {
	supplierID := cmd.IntOpt("s supplier", 0, "only run links of this supplier ID")
	kind := cmd.StringOpt("k kind", "", "only run links of this product kind (e.g. propellant)")
	interactive := cmd.BoolOpt("i interactive", false, "prompt for unmatched entries instead of logging them")

	cmd.Action = func() {
		// ================== Bootstrap ====================
		cfg, logger := bootstrap()
		if *interactive {
			cfg.Resolver = config.ResolverInteractive
		}
		logger.Info("Concurrency: %d | Rate delay: %dms | Retries: %d | Fetcher: %s | Resolver: %s",
			cfg.MaxConcurrency, cfg.RateLimitDelay, cfg.MaxRetries, cfg.Fetcher, cfg.Resolver)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// =================== Stores ========================================
		store := openStore(cfg, logger)
		defer store.Close()
		snapshots := storage.NewSnapshotCache(newBlobStore(cfg, logger), logger)

		// =============== Pipeline ===================================
		var resolver services.Resolver = services.NewLogResolver(snapshots, logger)
		linkWorkers := cfg.MaxConcurrency
		if cfg.Resolver == config.ResolverInteractive {
			resolver = services.NewPromptResolver(store, os.Stdin, os.Stdout, logger)
			// one operator, one prompt at a time
			linkWorkers = 1
		}

		pipeline := services.NewPipeline(
			store,
			snapshots,
			newFetcher(cfg, logger),
			suppliers.DefaultRegistry(logger),
			resolver,
			services.Options{
				FetchTimeout: cfg.FetchTimeout,
				MatchWorkers: cfg.MatchWorkers,
				LinkWorkers:  linkWorkers,
			},
			logger,
		)

		links, err := store.Links(ctx)
		if err != nil {
			logger.Error("Failed to load links: %v", err)
			cli.Exit(1)
		}
		links = services.SelectLinks(links, int64(*supplierID), models.ProductKind(*kind))
		if len(links) == 0 {
			logger.Warn("No supplier links to process")
			return
		}
		if err := pipeline.Validate(ctx, links); err != nil {
			logger.Error("Invalid link configuration:\n%v", err)
			cli.Exit(1)
		}

		reports := pipeline.RunAll(ctx, links, mode)

		// ==== Report ============================
		services.PrintRunReports(os.Stdout, reports)
		if services.Summarize(reports).Failed > 0 {
			cli.Exit(1)
		}
	}
}

func bootstrap() (*config.Config, *utils.Logger) {
	cfg := config.Load()
	logger := utils.NewLoggerTo(os.Stderr, utils.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		cli.Exit(1)
	}
	return cfg, logger
}

func openStore(cfg *config.Config, logger *utils.Logger) *storage.PostgresStore {
	store, err := storage.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Cannot connect to PostgreSQL: %v", err)
		logger.Error("Check DATABASE_URL and that the database is running")
		cli.Exit(1)
	}
	return store
}

func newBlobStore(cfg *config.Config, logger *utils.Logger) storage.BlobStore {
	if cfg.AzureAccountName == "" {
		return storage.NewFileBlobStore(cfg.SnapshotDir)
	}
	blobs, err := storage.NewAzureBlobStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.SnapshotContainer)
	if err != nil {
		logger.Error("Cannot open snapshot container: %v", err)
		cli.Exit(1)
	}
	logger.Info("Using Azure Blob Storage container '%s' for snapshots", cfg.SnapshotContainer)
	return blobs
}

func newFetcher(cfg *config.Config, logger *utils.Logger) fetch.Fetcher {
	limiter := utils.NewRateLimiter(cfg.RateLimitDelay)
	if cfg.Fetcher == config.FetcherBrowser {
		return fetch.NewBrowserFetcher(limiter, cfg.MaxRetries, cfg.UserAgent, logger)
	}
	return fetch.NewHTTPFetcher(limiter, cfg.MaxRetries, cfg.UserAgent, logger)
}
