package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/razecmarketing/schedbank/internal/adapter/grpc"
	"github.com/razecmarketing/schedbank/internal/adapter/metrics"
	"github.com/razecmarketing/schedbank/internal/adapter/repository/memory"
	"github.com/razecmarketing/schedbank/internal/adapter/repository/postgres"
	"github.com/razecmarketing/schedbank/internal/config"
	"github.com/razecmarketing/schedbank/internal/domain"
	"github.com/razecmarketing/schedbank/internal/logger"
	"github.com/razecmarketing/schedbank/internal/usecase/ledger"
)

const connectTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "schedbank: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 1. Setup storage
	store, closeStore, err := openStore(cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. Initialize services
	collector := metrics.NewCollector()
	ledgerService := ledger.NewLedgerService(store, log, ledger.WithRecorder(collector))

	// 3. Start gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.GRPC.AuthToken),
		),
	)
	grpcadapter.RegisterTransferServiceServer(grpcServer, grpcadapter.NewServer(ledgerService, log))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if !cfg.IsProduction() {
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr, err)
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr), zap.String("env", cfg.App.Env))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// 4. Start metrics endpoint
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, healthServer, metricsServer)
	return nil
}

// logConfig starts from the logger defaults for the app environment and
// applies any configured overrides
func logConfig(cfg *config.Config) *logger.Config {
	logCfg := logger.DefaultConfig()
	if cfg.IsProduction() {
		logCfg = logger.ProductionConfig()
	}
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	return logCfg
}

// openStore connects the configured transfer store and returns its release func
func openStore(cfg config.DatabaseConfig, log *zap.Logger) (domain.TransferStore, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory transfer store, data is lost on restart")
		return memory.NewTransferStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.DSN(), postgres.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL(), err)
	}

	if err := postgres.Migrate(db, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("connected to database", zap.String("url", cfg.URL()))

	return postgres.NewTransferRepository(db), func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log *zap.Logger, grpcServer *grpclib.Server, healthServer *health.Server, metricsServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info("shutting down gracefully", zap.String("signal", sig.String()))

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
}
