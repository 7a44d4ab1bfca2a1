package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanvallejoss/hr-system/internal/adapters/grpc/handler"
	"github.com/ivanvallejoss/hr-system/internal/app"
	"github.com/ivanvallejoss/hr-system/internal/platform/authz"
	"github.com/ivanvallejoss/hr-system/internal/platform/config"
	"github.com/ivanvallejoss/hr-system/internal/platform/logging"
	"github.com/ivanvallejoss/hr-system/internal/platform/server"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	mode, err := authz.ParseMode(cfg.Authz.Mode)
	if err != nil {
		return err
	}
	authorizer, err := authz.New(mode)
	if err != nil {
		return fmt.Errorf("initialize authorizer: %w", err)
	}
	if mode == authz.ModeDisabled {
		logger.Warn("authorization is disabled")
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	hr := handler.NewHRGrpcHandler(a.Employees, a.Reports, a.Dashboards, authorizer, logger.WithField("component", "grpc"))
	grpcServer := server.New(cfg.Server.ListenAddr, hr,
		server.WithLogger(logger.WithField("component", "access")),
		server.WithUnaryInterceptor(a.Metrics.UnaryServerInterceptor()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.Server.ListenAddr).Info("gRPC server listening")
		return grpcServer.Run(gctx)
	})
	if cfg.Server.MetricsAddr != "" {
		g.Go(func() error {
			logger.WithField("addr", cfg.Server.MetricsAddr).Info("metrics server listening")
			return a.Metrics.Serve(gctx, cfg.Server.MetricsAddr)
		})
	}

	return g.Wait()
}
