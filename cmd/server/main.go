package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/nrjais/aerostore/internal/config"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/grpcapi"
	"github.com/nrjais/aerostore/internal/health"
	"github.com/nrjais/aerostore/internal/leader"
	"github.com/nrjais/aerostore/internal/logging"
	"github.com/nrjais/aerostore/internal/metrics"
	"github.com/nrjais/aerostore/internal/migrations"
	"github.com/nrjais/aerostore/internal/resources"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/internal/store"
)

func main() {
	_, syncBoot, err := logging.New("INFO")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	zap.S().Info("Starting aerostore server...")

	cfg := config.Load()
	syncBoot()
	_, syncLog, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer syncLog()

	if cfg.SchemaOptions.RunMigrations {
		if err := migrations.RunMigrations(cfg.PostgresURL); err != nil {
			zap.S().Fatalw("Database migration failed", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresURL, db.PoolOptions{
		MaxConns: cfg.PoolOptions.MaxConns,
		MinConns: cfg.PoolOptions.MinConns,
	})
	if err != nil {
		zap.S().Fatalw("Database setup failed", "error", err)
	}
	defer pgPool.Close()

	if err := initTables(ctx, pgPool, cfg); err != nil {
		zap.S().Fatalw("Table initialization failed", "error", err)
	}

	var wg sync.WaitGroup
	m := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	grpcServer, err := startGRPCServer(&wg, pgPool, m, cfg)
	if err != nil {
		zap.S().Fatalw("Failed to start gRPC server", "error", err)
	}
	httpServer := startHTTPServer(&wg, pgPool, m, cfg)

	waitForShutdownSignal()
	zap.S().Info("Shutting down server...")

	grpcServer.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.S().Warnw("HTTP server shutdown failed", "error", err)
	}

	wg.Wait()
	zap.S().Info("Server stopped gracefully.")
}

func instanceID() string {
	hostname, err := os.Hostname()
	if err != nil {
		zap.S().Warnw("Failed to get hostname, using random instance ID", "error", err)
		return uuid.NewString()
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// initTables creates the resource tables while holding the schema lock, so concurrent
// replicas do not race on DDL.
func initTables(ctx context.Context, pgPool *pgxpool.Pool, cfg *config.Config) error {
	registry, err := resources.NewRegistry()
	if err != nil {
		return err
	}
	if !cfg.SchemaOptions.InitTables && !cfg.SchemaOptions.RebuildTables {
		zap.S().Info("Table initialization disabled")
		return nil
	}

	elector := leader.NewElector(pgPool, instanceID())
	lease := time.Duration(cfg.SchemaOptions.LockLeaseSecs) * time.Second
	return elector.WithLock(ctx, leader.SchemaLockName, lease, 2*time.Second, func(ctx context.Context) error {
		return store.InitTables(ctx, pgPool, registry, cfg.SchemaOptions.RebuildTables)
	})
}

func startGRPCServer(wg *sync.WaitGroup, pgPool *pgxpool.Pool, m *metrics.Metrics, cfg *config.Config) (*grpc.Server, error) {
	services, err := grpcapi.ResourceServices(pgPool, sqlgen.PageLimits{
		DefaultPerPage: cfg.SearchOptions.DefaultResultsPerPage,
		MaxPerPage:     cfg.SearchOptions.MaxResultsPerPage,
	})
	if err != nil {
		return nil, err
	}

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", cfg.GRPCPort, err)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcapi.RecoveryInterceptor(),
		m.UnaryServerInterceptor(),
		grpcapi.LoggingInterceptor(),
	))
	grpcapi.Register(s, services...)

	zap.S().Infow("gRPC server listening", "addr", cfg.GRPCPort, "services", len(services))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Serve(lis); err != nil {
			if !errors.Is(err, grpc.ErrServerStopped) {
				zap.S().Errorw("Failed to serve gRPC", "error", err)
			} else {
				zap.S().Info("gRPC server stopped gracefully.")
			}
		}
	}()
	return s, nil
}

func startHTTPServer(wg *sync.WaitGroup, pgPool *pgxpool.Pool, m *metrics.Metrics, cfg *config.Config) *http.Server {
	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           health.Mux(health.NewHandler(pgPool), m.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	zap.S().Infow("HTTP server listening", "addr", cfg.HTTPPort)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorw("Failed to serve HTTP", "error", err)
		}
	}()
	return srv
}

func waitForShutdownSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
