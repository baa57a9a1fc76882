package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/walletfx-backend/internal/adapter/fastforex"
	grpcadapter "github.com/simaogato/walletfx-backend/internal/adapter/grpc"
	"github.com/simaogato/walletfx-backend/internal/adapter/repository/postgres"
	redisrepo "github.com/simaogato/walletfx-backend/internal/adapter/repository/redis"
	"github.com/simaogato/walletfx-backend/internal/adapter/rest"
	"github.com/simaogato/walletfx-backend/internal/config"
	"github.com/simaogato/walletfx-backend/internal/domain"
	"github.com/simaogato/walletfx-backend/internal/logger"
	"github.com/simaogato/walletfx-backend/internal/metrics"
	"github.com/simaogato/walletfx-backend/internal/usecase/conversion"
	"github.com/simaogato/walletfx-backend/internal/usecase/dashboard"
	"github.com/simaogato/walletfx-backend/internal/usecase/portfolio"
	"github.com/simaogato/walletfx-backend/internal/usecase/rates"
	"github.com/simaogato/walletfx-backend/internal/usecase/seeder"
	"github.com/simaogato/walletfx-backend/internal/usecase/transfer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration and logger
	cfg := config.MustLoad()

	zlog, err := logger.New(cfg.LogConfig.LogLevel, cfg.LogConfig.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	mapping, err := cfg.CurrencyMapping()
	if err != nil {
		zlog.Fatal("invalid currency mapping", zap.Error(err))
	}
	fallback, err := cfg.FallbackRates(time.Time{})
	if err != nil {
		zlog.Fatal("invalid fallback rates", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Setup Database and rate store
	db, err := postgres.NewDB(cfg.Database.Dsn)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	var store domain.RateSnapshotRepository
	switch cfg.Rates.Store {
	case config.StorePostgres:
		store = postgres.NewRateSnapshotRepository(db)
	case config.StoreRedis:
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = redisrepo.NewRateSnapshotRepository(client, 0)
	}

	// 3. Initialize metrics and external clients
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	fxMetrics := metrics.NewFXMetrics(registry)

	if cfg.FastForex.APIKey == "" {
		zlog.Warn("FASTFOREX_API_KEY is not set, quotes will use fallback rates")
	}
	fastforexClient := fastforex.NewClient(cfg.FastForex.BaseURL, cfg.FastForex.APIKey, cfg.FastForex.Timeout)
	balanceRepo := postgres.NewWalletBalanceRepository(db)

	// 4. Initialize Services (Use Cases)
	base := mapping.Base()
	rateService := rates.NewRateService(fastforexClient, store, base, cfg.Rates.MaxAge, fallback, zlog.Named("rates"), fxMetrics)
	conversionService := conversion.NewConversionService(fastforexClient, rateService, mapping, cfg.Quotes.Timeout, zlog.Named("conversion"), fxMetrics)
	valuator := portfolio.NewValuator(mapping, zlog.Named("portfolio"))
	dashboardService := dashboard.NewDashboardService(balanceRepo, rateService, valuator, cfg.Rates.MaxAge, zlog.Named("dashboard"))
	// Transfers are executed by the ledger service; this process only validates them
	transferService := transfer.NewTransferService(balanceRepo, nil, zlog.Named("transfer"), fxMetrics)

	// Seed the fallback table so a fresh store still has something to serve
	if store != nil && fallback != nil {
		seeded, err := seeder.NewRateSeeder(store, fallback).Seed(ctx)
		if err != nil {
			zlog.Fatal("failed to seed fallback rates", zap.Error(err))
		}
		if seeded {
			zlog.Info("fallback rates seeded", zap.Stringer("base", base))
		}
	}

	if _, err := rateService.Load(ctx); err != nil {
		zlog.Info("no stored rates to warm from", zap.Error(err))
	}
	if _, err := rateService.Refresh(ctx); err != nil {
		zlog.Warn("initial rate refresh failed", zap.Error(err))
	}
	go rateService.Run(ctx, cfg.Rates.RefreshInterval)

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(zlog.Named("grpc")),
			grpcadapter.LoggingInterceptor(zlog.Named("grpc")),
			grpcadapter.AuthInterceptor(cfg.GRPCServer.APIToken),
		),
	)

	grpcAdapter := grpcadapter.NewServer(conversionService, transferService, dashboardService, rateService, cfg.Rates.MaxAge)
	grpcadapter.RegisterWalletFXServiceServer(grpcServer, grpcAdapter)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		zlog.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr()), zap.Error(err))
	}

	go func() {
		zlog.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr()))
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 6. Start HTTP Server (health, metrics, browser quotes)
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.Deps{
			Converter:   conversionService,
			Rates:       rateService,
			Gatherer:    registry,
			APIToken:    cfg.GRPCServer.APIToken,
			QuietWindow: cfg.Quotes.QuietWindow,
			Logger:      zlog.Named("http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to serve HTTP server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	zlog.Info("shutting down gracefully")
	healthServer.Shutdown()
	waitForShutdown(grpcServer, httpServer, zlog)
}

// waitForShutdown drains both servers, forcing the gRPC stop after shutdownTimeout
func waitForShutdown(grpcServer *grpclib.Server, httpServer *http.Server, zlog *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("HTTP server shutdown", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	zlog.Info("servers stopped")
}
