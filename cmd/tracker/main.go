// Package main runs the smart-money tracker as one process:
// - Feed (continuous): WebSocket stream of token-launch trades
// - Engine (continuous): per-event pipeline over sharded workers
// - Delivery (continuous): polls the alert queue and notifies subscribers
// - API (continuous): leaderboard, wallet detail, stats, health, metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"smart-money-tracker/internal/alerting"
	"smart-money-tracker/internal/api"
	"smart-money-tracker/internal/archive"
	lbcache "smart-money-tracker/internal/cache/redis"
	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/engine"
	"smart-money-tracker/internal/feed"
	"smart-money-tracker/internal/normalizer"
	"smart-money-tracker/internal/notify"
	"smart-money-tracker/internal/positions"
	"smart-money-tracker/internal/scoring"
	"smart-money-tracker/internal/stats"
	"smart-money-tracker/internal/storage"
	chstore "smart-money-tracker/internal/storage/clickhouse"
	"smart-money-tracker/internal/storage/memory"
	"smart-money-tracker/internal/storage/migrations"
	pgstore "smart-money-tracker/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	feedEndpoint := flag.String("feed-endpoint", envOr("FEED_ENDPOINT", "wss://pumpportal.fun/api/data"), "Trade feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for leaderboard cache (optional)")
	telegramToken := flag.String("telegram-token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Telegram bot token for alert delivery (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP API address")
	workers := flag.Int("workers", 4, "Number of event worker shards")
	deliveryInterval := flag.Duration("delivery-interval", 5*time.Second, "Alert delivery poll interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[tracker] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *feedEndpoint == "" {
		logger.Fatal("--feed-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	ledger, cleanup, err := createLedger(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create storage: %v", err)
	}
	defer cleanup()

	// Optional ClickHouse archive
	var archiver *archive.Archiver
	if *clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to clickhouse: %v", err)
		}
		defer chConn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			logger.Fatalf("Failed to run clickhouse migrations: %v", err)
		}
		archiver = archive.NewArchiver(chstore.NewTradeArchiveStore(chConn), logger, 500, 10*time.Second)
	}

	// Optional Redis leaderboard cache
	var cache *lbcache.LeaderboardCache
	if *redisAddr != "" {
		rc, err := lbcache.New(ctx, lbcache.ClientConfig{Addr: *redisAddr})
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rc.Close()
		cache = lbcache.NewLeaderboardCache(rc)
	}

	// Alert sender
	var sender notify.Sender
	if *telegramToken != "" {
		sender = notify.NewTelegramSender(*telegramToken)
	} else {
		logger.Println("No telegram token configured, alerts will be logged only")
		sender = &notify.LogSender{Printf: logger.Printf}
	}

	// Pipeline
	processor := engine.NewProcessor(
		ledger,
		normalizer.New(),
		positions.NewTracker(logger),
		stats.NewAggregator(scoring.Score),
		alerting.NewTrigger(logger),
		archiveSink(archiver),
		logger,
	)
	eng := engine.New(engine.Options{
		Processor: processor,
		Logger:    logger,
		Workers:   *workers,
	})
	delivery := alerting.NewDeliveryWorker(ledger, sender, logger, *deliveryInterval, 20)
	feedClient := feed.NewClient(feed.DefaultConfig(*feedEndpoint), logger)
	apiServer := api.NewServer(ledger, cache, logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// HTTP API
	httpServer := &http.Server{Addr: *httpAddr, Handler: apiServer.Handler()}
	go func() {
		logger.Printf("Starting HTTP server on %s", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("HTTP server error: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	// Delivery worker
	go delivery.Run(ctx)

	// Archiver
	if archiver != nil {
		go archiver.Run(ctx)
	}

	// Feed → engine
	events := make(chan domain.RawTrade, 1024)
	go func() {
		if err := feedClient.Run(ctx, events); err != nil && err != context.Canceled {
			logger.Printf("Feed error: %v", err)
		}
		close(events)
	}()

	eng.Run(ctx, events)
	logger.Println("Shutdown complete")
}

// archiveSink adapts a possibly-nil *archive.Archiver to the engine's
// optional sink. A typed nil inside a non-nil interface would defeat the
// engine's nil check.
func archiveSink(a *archive.Archiver) engine.ArchiveSink {
	if a == nil {
		return nil
	}
	return a
}

// createLedger creates the storage backend and runs migrations.
func createLedger(ctx context.Context, postgresDSN string, useMemory bool) (storage.Ledger, func(), error) {
	if useMemory {
		return memory.NewLedger(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewLedger(pool), func() { pool.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
