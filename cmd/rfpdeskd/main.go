// Command rfpdeskd watches an inbox for RFP documents, runs each one through
// the pipeline on a worker pool, optionally scans the tender portal on a
// schedule, and writes a quote workbook per completed run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/rfp-desk/internal/app"
	"github.com/joseph-ayodele/rfp-desk/internal/async"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/export"
	"github.com/joseph-ayodele/rfp-desk/internal/ingest"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	// Not serving until the pipeline is wired.
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	orch, err := app.NewOrchestrator(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	exporter := export.NewService(logger)
	queue := async.NewRunQueue(orch, logger,
		async.WithWorkers(cfg.Inbox.Workers),
		async.WithQueueSize(cfg.Inbox.QueueSize),
		async.WithRunTimeout(cfg.Pipeline.RunTimeout),
		async.WithCompletion(completion(exporter, cfg.Export.Dir, logger)),
	)

	if err := os.MkdirAll(cfg.Inbox.Dir, 0o755); err != nil {
		logger.Error("failed to create inbox", "dir", cfg.Inbox.Dir, "error", err)
		os.Exit(1)
	}
	paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Inbox.Dir},
		InitialScan: cfg.Inbox.InitialScan,
		Debounce:    cfg.Inbox.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start inbox watcher", "error", err)
		os.Exit(1)
	}
	go feedInbox(ctx, paths, watchErrs, queue, logger)

	if cfg.Portal.Schedule != "" {
		c, err := async.SchedulePortalScans(cfg.Portal.Schedule, cfg.Portal.URL, queue, logger)
		if err != nil {
			logger.Error("failed to schedule portal scans", "error", err)
			os.Exit(2)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	logger.Info("rfpdeskd started",
		"grpc_addr", cfg.Server.GRPCAddr,
		"inbox", cfg.Inbox.Dir,
		"workers", cfg.Inbox.Workers,
		"portal_schedule", cfg.Portal.Schedule,
	)

	<-ctx.Done()
	logger.Info("shutting down...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.RunTimeout+5*time.Second)
	defer cancel()
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Warn("queue did not drain", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
