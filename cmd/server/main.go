package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/goldfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/goldfolio-backend/internal/adapter/httpapi"
	"github.com/simaogato/goldfolio-backend/internal/adapter/price/bigpara"
	"github.com/simaogato/goldfolio-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/goldfolio-backend/internal/config"
	"github.com/simaogato/goldfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/goldfolio-backend/pkg/logger"
)

const (
	dbConnectAttempts = 5
	dbRetryDelay      = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if cfg.UsesDefaultToken() {
		log.Warn("using the default development API token; set API_TOKEN in production")
	}

	// 2. Setup Database (retry while Postgres starts up)
	ctx := context.Background()
	db, err := connectDB(ctx, cfg.DBConnStr, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}
	log.Info("database schema is up to date")

	// 3. Initialize repository, price source and services
	lotRepo := postgres.NewLotRepository(db)

	priceClient, err := bigpara.NewClient(bigpara.Config{
		URL:      cfg.PriceSourceURL,
		Timeout:  cfg.PriceFetchTimeout,
		CacheTTL: cfg.PriceCacheTTL,
	}, logger.Named(log, "bigpara"))
	if err != nil {
		log.Fatal("invalid price source configuration", zap.Error(err))
	}

	ledgerService := ledger.NewLedgerService(lotRepo, logger.Named(log, "ledger"))
	portfolioService := portfolio.NewPortfolioService(lotRepo, priceClient, logger.Named(log, "portfolio"))

	// 4. Start gRPC Server
	var grpcServer *grpclib.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpclib.NewServer(
			grpclib.ChainUnaryInterceptor(
				grpcadapter.LoggingInterceptor(logger.Named(log, "grpc")),
				grpcadapter.AuthInterceptor(cfg.APIToken),
			),
		)
		grpcadapter.RegisterPortfolioServiceServer(grpcServer, grpcadapter.NewServer(ledgerService, portfolioService))
		reflection.Register(grpcServer)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
		}
		go func() {
			log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatal("failed to serve gRPC server", zap.Error(err))
			}
		}()
	}

	// 5. Start HTTP Server
	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(portfolioService, logger.Named(log, "http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("failed to serve HTTP server", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer)
}

func connectDB(ctx context.Context, connStr string, log *zap.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err := postgres.NewDB(ctx, connStr)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Warn("database not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", dbConnectAttempts),
			zap.Error(err))
		time.Sleep(dbRetryDelay)
	}
	return nil, lastErr
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log *zap.Logger, grpcServer *grpclib.Server, httpServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info("shutting down gracefully", zap.String("signal", sig.String()))

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
		log.Info("HTTP server stopped")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
	}
}
