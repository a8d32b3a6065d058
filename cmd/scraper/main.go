package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rbarros/parts-scraper/internal/api"
	"github.com/rbarros/parts-scraper/internal/browser"
	"github.com/rbarros/parts-scraper/internal/config"
	"github.com/rbarros/parts-scraper/internal/database"
	"github.com/rbarros/parts-scraper/internal/events"
	"github.com/rbarros/parts-scraper/internal/identity"
	"github.com/rbarros/parts-scraper/internal/parser"
	"github.com/rbarros/parts-scraper/internal/progress"
	"github.com/rbarros/parts-scraper/internal/ratelimit"
	"github.com/rbarros/parts-scraper/internal/results"
	"github.com/rbarros/parts-scraper/internal/scraper"
	"github.com/rbarros/parts-scraper/internal/workflow"
	"github.com/rbarros/parts-scraper/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags, err := parseFlags(cfg)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting scraper",
		"input", flags.input,
		"output", cfg.Output.Dir,
		"headless", cfg.Browser.Headless,
		"max_retries", cfg.Scraper.MaxRetries,
	)

	// Context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal, finishing current term")
		cancel()
	}()

	store := progress.NewCSVStore(flags.input, log)

	jsonWriter, err := results.NewJSONWriter(cfg.Output.Dir, log)
	if err != nil {
		return fmt.Errorf("create output writer: %w", err)
	}

	var writer workflow.ResultWriter = jsonWriter
	if flags.useDatabase {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		sink := database.NewProductSink(db, log)
		if err := sink.EnsureSchema(ctx); err != nil {
			return err
		}
		writer = results.NewMultiWriter(jsonWriter, sink)
		log.Info("database sink enabled", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}

	var publisher workflow.EventPublisher
	if flags.useRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		pub := events.NewPublisher(client, cfg.Redis.Stream, log)
		defer pub.Close()
		publisher = pub
		log.Info("event publishing enabled", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
	}

	var statusServer *api.Server
	if cfg.Server.Addr != "" {
		handlers := api.NewHandlers(store, log)
		statusServer = api.NewServer(cfg.Server.Addr, api.NewRouter(handlers), log)
		go func() {
			if err := statusServer.Start(); err != nil {
				log.Error("status server failed", "error", err)
			}
		}()
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	browserOpts.Timeout = cfg.Browser.Timeout
	browserOpts.ViewportWidth = cfg.Browser.ViewportWidth
	browserOpts.ViewportHeight = cfg.Browser.ViewportHeight
	browserOpts.AcceptLanguage = cfg.Browser.AcceptLanguage
	browserOpts.TimezoneID = cfg.Browser.TimezoneID
	browserOpts.Locale = cfg.Browser.Locale

	b, err := browser.New(browserOpts, log)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer b.Close()

	site := scraper.New(b, parser.NewProductParser(), cfg.Site.BaseURL, cfg.Site.HomeURL, log)

	engine, err := workflow.NewEngine(
		workflow.Options{
			MaxRetries:       cfg.Scraper.MaxRetries,
			WriteRetryBudget: cfg.Scraper.WriteRetryBudget,
		},
		workflow.Deps{
			Store:     store,
			Search:    site,
			Extract:   site,
			Writer:    writer,
			Pacer:     ratelimit.NewRequestPacer(cfg.Scraper.DelayMin, cfg.Scraper.DelayMax, cfg.Scraper.RetryDelay, cfg.Scraper.BackoffMax),
			Identity:  identity.NewRotator(cfg.Scraper.UserAgents, cfg.Browser.AcceptLanguage, time.Now().UnixNano()),
			Publisher: publisher,
			Logger:    log,
		},
	)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	stats, runErr := engine.Run(ctx)

	if statusServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("status server shutdown failed", "error", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}

	log.Info("done",
		"found", stats.Found,
		"not_found", stats.NotFound,
		"errors", stats.Errors,
		"pending", stats.Pending,
	)
	return nil
}
