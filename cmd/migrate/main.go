// Package main applies the embedded database migrations to PostgreSQL
// and, when configured, ClickHouse.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	chstore "github.com/ArjunMal1311/meme-coin/internal/storage/clickhouse"
	"github.com/ArjunMal1311/meme-coin/internal/storage/migrations"
	pgstore "github.com/ArjunMal1311/meme-coin/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("at least one of --postgres-dsn or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("PostgreSQL migrations: %v", err)
		}
		pool.Close()
		logger.Println("PostgreSQL migrations applied")
	}

	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Connect to clickhouse: %v", err)
		}
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			conn.Close()
			logger.Fatalf("ClickHouse migrations: %v", err)
		}
		conn.Close()
		logger.Println("ClickHouse migrations applied")
	}
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
