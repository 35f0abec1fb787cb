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

	"github.com/sirupsen/logrus"

	"org-membership-service/internal/app"
	"org-membership-service/internal/config"
	"org-membership-service/internal/db"
	"org-membership-service/internal/observability"
	"org-membership-service/internal/server"
	telemetryotel "org-membership-service/internal/telemetry/otel"
)

const (
	healthInterval  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, nil)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("otel shutdown")
		}
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	a, err := app.Build(ctx, cfg, conn, log, providers.LoggerProvider)
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router(cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv, hs := server.NewGRPCServer()
	go a.Health.Watch(ctx, hs, healthInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		log.Infof("gRPC health server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.WithError(err).Error("grpc serve")
			stop()
		}
	}()
	go func() {
		log.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http serve")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	grpcSrv.GracefulStop()
	if err := a.Emitter.Wait(shutdownCtx); err != nil {
		log.WithError(err).Warn("audit emit drain")
	}
	log.Info("stopped")
}
