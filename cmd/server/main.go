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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/pkg/logging"
	"github.com/light-bringer/catalog-engine/internal/services"
	transporthttp "github.com/light-bringer/catalog-engine/internal/transport/http"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Failed to run server")
	}
}

func run() error {
	// 1. Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	format := cfg.LogFormat
	if format == "" {
		format = logging.FormatFor(cfg.AppEnv)
	}
	log, err := logging.New(cfg.LogLevel, format)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"env":       cfg.AppEnv,
		"driver":    cfg.StoreDriver,
		"http_port": cfg.HTTPPort,
		"grpc_port": cfg.GRPCPort,
	}).Info("Starting catalog engine")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; every admin request will be rejected")
	}

	// 3. gRPC server: health and reflection
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	// 4. HTTP server
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := transporthttp.NewHandler(serviceOpts.Commands, serviceOpts.Queries, log)
	router := transporthttp.NewRouter(handler, transporthttp.RouterOptions{
		Verifier:           serviceOpts.Verifier,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		Log:                log,
	})
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Infof("gRPC server listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		log.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// 5. Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errCh:
		log.WithError(runErr).Error("Server stopped unexpectedly")
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	grpcServer.GracefulStop()

	log.Info("Server exited")
	return runErr
}
