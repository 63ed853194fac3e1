// Package main runs the launchpad service: the token sale factory with
// its HTTP/WebSocket API, optional PostgreSQL registry persistence, and
// an optional ClickHouse purchase-history recorder for analytics.
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

	"github.com/ArjunMal1311/meme-coin/internal/analytics"
	"github.com/ArjunMal1311/meme-coin/internal/api"
	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/events"
	"github.com/ArjunMal1311/meme-coin/internal/factory"
	"github.com/ArjunMal1311/meme-coin/internal/identity"
	"github.com/ArjunMal1311/meme-coin/internal/ledger"
	"github.com/ArjunMal1311/meme-coin/internal/observability"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
	chstore "github.com/ArjunMal1311/meme-coin/internal/storage/clickhouse"
	"github.com/ArjunMal1311/meme-coin/internal/storage/memory"
	"github.com/ArjunMal1311/meme-coin/internal/storage/migrations"
	pgstore "github.com/ArjunMal1311/meme-coin/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("LAUNCHPAD_ADDR", ":8080"), "HTTP listen address")
	owner := flag.String("owner", os.Getenv("LAUNCHPAD_OWNER"), "Administrator address (fee recipient)")
	fee := flag.String("fee", envOr("LAUNCHPAD_FEE", "0.01"), "Token creation fee")
	totalSupply := flag.String("total-supply", envOr("LAUNCHPAD_TOTAL_SUPPLY", "1000000"), "Fixed supply per token, whole units")
	saleCap := flag.String("sale-cap", envOr("LAUNCHPAD_SALE_CAP", "500000"), "Units sold at which a sale closes")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables purchase analytics)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", false, "Run database migrations before serving")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *owner == "" {
		logger.Fatal("--owner is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := parseConfig(*owner, *fee, *totalSupply, *saleCap)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("meme_coin")
	bus := events.NewBus()

	f, err := factory.New(cfg, factory.Deps{
		Sales:    stores.sales,
		Treasury: stores.treasury,
		Tokens:   ledger.NewMemoryLedger(),
		Bus:      bus,
		Metrics:  metrics,
		Logger:   log.New(os.Stdout, "[factory] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create factory: %v", err)
	}

	// Purchase history recorder feeds the analytics endpoints.
	var aggregator *analytics.Aggregator
	if stores.purchases != nil {
		aggregator = analytics.NewAggregator(stores.purchases)
		recorder := analytics.NewRecorder(stores.purchases, bus, log.New(os.Stdout, "[recorder] ", log.LstdFlags))
		go recorder.Run(ctx)
		defer func() {
			<-recorder.Done()
		}()
	}

	apiServer := api.NewServer(api.Options{
		Factory:   f,
		Analytics: aggregator,
		Bus:       bus,
		Metrics:   metrics,
		Logger:    log.New(os.Stdout, "[api] ", log.LstdFlags),
	})

	mux := http.NewServeMux()
	mux.Handle("/", apiServer.Routes())
	mux.Handle("/metrics", observability.Handler())

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: mux,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s (owner=%s fee=%s)", *addr, cfg.Owner, domain.FormatAmount(cfg.Fee))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		logger.Printf("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
	cancel()

	logger.Println("Shutdown complete")
}

// parseConfig builds the factory configuration from flag values.
func parseConfig(owner, fee, totalSupply, saleCap string) (factory.Config, error) {
	if err := identity.ValidateAddress(owner); err != nil {
		return factory.Config{}, fmt.Errorf("owner: %w", err)
	}
	feeAmt, err := domain.ParseAmount(fee)
	if err != nil {
		return factory.Config{}, fmt.Errorf("fee: %w", err)
	}
	supplyAmt, err := domain.ParseAmount(totalSupply)
	if err != nil {
		return factory.Config{}, fmt.Errorf("total supply: %w", err)
	}
	capAmt, err := domain.ParseAmount(saleCap)
	if err != nil {
		return factory.Config{}, fmt.Errorf("sale cap: %w", err)
	}

	return factory.Config{
		Fee:         feeAmt,
		Owner:       owner,
		Account:     identity.DeriveAddress("launchpad:" + owner),
		TotalSupply: supplyAmt,
		SaleCap:     capAmt,
	}, nil
}

// allStores holds the storage implementations behind the factory.
type allStores struct {
	sales     storage.SaleStore
	treasury  storage.TreasuryStore
	purchases storage.PurchaseEventStore // nil unless analytics enabled
}

// createStores creates the configured storage backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			sales:     memory.NewSaleStore(),
			treasury:  memory.NewTreasuryStore(),
			purchases: memory.NewPurchaseEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Println("PostgreSQL migrations applied")
	}

	stores := &allStores{
		sales:    pgstore.NewSaleStore(pool),
		treasury: pgstore.NewTreasuryStore(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse is optional; without it the service runs with no
	// purchase history and the analytics endpoints stay disabled.
	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if migrate {
			if err := migrations.RunClickhouse(ctx, conn); err != nil {
				conn.Close()
				pool.Close()
				return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
			}
			logger.Println("ClickHouse migrations applied")
		}
		stores.purchases = chstore.NewPurchaseEventStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
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

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
