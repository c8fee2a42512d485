// Package main runs the wallet dashboard API server:
// - JSON endpoints for balance, positions, transfer reconciliation, price
// - live balance WebSocket stream
// - health/status/metrics
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

	"solana-wallet-dashboard/internal/api"
	"solana-wallet-dashboard/internal/portfolio"
	"solana-wallet-dashboard/internal/reconcile"
	"solana-wallet-dashboard/internal/solana"
	"solana-wallet-dashboard/internal/storage"
	chstore "solana-wallet-dashboard/internal/storage/clickhouse"
	"solana-wallet-dashboard/internal/storage/memory"
	"solana-wallet-dashboard/internal/storage/migrations"
	pgstore "solana-wallet-dashboard/internal/storage/postgres"
	"solana-wallet-dashboard/internal/tokenmeta"
)

const defaultRPCEndpoint = "https://api.mainnet-beta.solana.com"

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", defaultRPCEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (empty disables the live balance stream)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty uses in-memory metadata cache)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty uses in-memory transfer archive)")
	usdcMint := flag.String("usdc-mint", envOr("USDC_MINT", solana.USDCMint), "USDC mint address (override for devnet)")
	signatureLimit := flag.Int("signature-limit", 100, "Signature history page size per token account")
	reconcileTimeout := flag.Duration("reconcile-timeout", reconcile.DefaultFetchTimeout, "Deadline for one reconciliation fetch phase")
	metadataTTL := flag.Duration("metadata-ttl", tokenmeta.DefaultCacheTTL, "Token metadata cache TTL")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	metadataStore, archiveStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Solana clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)

	var ws solana.WSClient
	if *wsEndpoint != "" {
		wsClient, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Failed to connect websocket endpoint: %v", err)
		}
		defer wsClient.Close()
		ws = wsClient
	} else {
		logger.Println("No websocket endpoint configured, live balance stream disabled")
	}

	// Domain services
	reconciler := reconcile.New(rpc, reconcile.Config{
		Mint:           *usdcMint,
		SignatureLimit: *signatureLimit,
		FetchTimeout:   *reconcileTimeout,
	},
		reconcile.WithLogger(log.New(os.Stdout, "[reconcile] ", log.LstdFlags|log.Lshortfile)),
		reconcile.WithArchive(archiveStore),
	)

	prices := tokenmeta.NewCoinGeckoClient()
	resolver := tokenmeta.NewResolver(metadataStore, prices, tokenmeta.NewSolanaFMClient(),
		tokenmeta.WithResolverLogger(log.New(os.Stdout, "[tokenmeta] ", log.LstdFlags|log.Lshortfile)),
		tokenmeta.WithCacheTTL(*metadataTTL),
	)

	portfolioSvc := portfolio.NewService(rpc, resolver,
		portfolio.WithServiceLogger(log.New(os.Stdout, "[portfolio] ", log.LstdFlags|log.Lshortfile)),
	)

	serverOpts := []api.ServerOption{
		api.WithLogger(logger),
		api.WithPriceClient(prices),
		api.WithTransferArchive(archiveStore),
	}
	if ws != nil {
		serverOpts = append(serverOpts, api.WithWSClient(ws))
	}
	apiServer := api.NewServer(rpc, reconciler, portfolioSvc, serverOpts...)

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: apiServer.Handler(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()

		// Second signal forces immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-shutdownCtx.Done():
		}
	}()

	logger.Printf("Starting HTTP server on %s (rpc: %s)", *listenAddr, *rpcEndpoint)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the metadata cache and transfer archive, falling back
// to in-memory implementations when no DSN is configured. Migrations run
// against every configured backend.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, logger *log.Logger) (storage.TokenMetadataStore, storage.TransferArchiveStore, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var metadataStore storage.TokenMetadataStore
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		metadataStore = pgstore.NewTokenMetadataStore(pool)
		logger.Println("Token metadata cache: postgres")
	} else {
		metadataStore = memory.NewTokenMetadataStore()
		logger.Println("Token metadata cache: in-memory")
	}

	var archiveStore storage.TransferArchiveStore
	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		archiveStore = chstore.NewTransferArchiveStore(conn)
		logger.Println("Transfer archive: clickhouse")
	} else {
		archiveStore = memory.NewTransferArchiveStore()
		logger.Println("Transfer archive: in-memory")
	}

	return metadataStore, archiveStore, cleanup, nil
}

// envOr returns the environment value or a default.
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
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
