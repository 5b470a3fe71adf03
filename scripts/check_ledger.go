//go:build ignore

// check_ledger connects with the gateway's database settings and prints the
// payment attempt ledger by status.
//
//	go run scripts/check_ledger.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"shopcart/internal/config"
	"shopcart/internal/database"
	"shopcart/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := repository.NewPaymentAttemptRepository(pool, logger).EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ledger schema check failed: %v\n", err)
		os.Exit(1)
	}

	rows, err := pool.Query(ctx, "SELECT status, method, count(*) FROM payment_attempts GROUP BY status, method ORDER BY status, method")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Println("\nPayment attempts:")
	for rows.Next() {
		var (
			status, method string
			count          int
		)
		if err := rows.Scan(&status, &method, &count); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  - %-10s %-7s %d\n", status, method, count)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Rows failed: %v\n", err)
		os.Exit(1)
	}
}
