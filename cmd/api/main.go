package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/app"
	"github.com/riskibarqy/fantasy-hoops/internal/config"
	"github.com/riskibarqy/fantasy-hoops/internal/observability"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofServer := observability.StartPprofServer(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	srv, err := app.NewHTTPServer(rt, logger)
	if err != nil {
		logger.Error("build http server", "error", err)
		_ = rt.Close()
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := observability.StopPprofServer(pprofServer, logger, shutdownTimeout); err != nil {
		logger.Warn("stop pprof server", "error", err)
	}
	if err := rt.Close(); err != nil {
		logger.Warn("close runtime", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Warn("stop pyroscope", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("shutdown uptrace", "error", err)
	}

	logger.Info("http server stopped")
	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
