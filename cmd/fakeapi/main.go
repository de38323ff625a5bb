package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dwikikusuma/rocketshoes-cart/pkg/config"
	"github.com/dwikikusuma/rocketshoes-cart/pkg/logger"
	"github.com/dwikikusuma/rocketshoes-cart/pkg/shutdown"
	"github.com/dwikikusuma/rocketshoes-cart/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "fakeapi",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Options{
		Service:  "fakeapi",
		Exporter: cfg.TraceExporter,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("telemetry init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("tracer shutdown error", slog.Any("err", err))
		}
	}()

	fx, err := loadFixture(cfg.FixturePath)
	if err != nil {
		log.Error("fixture load failed", slog.Any("err", err), slog.String("path", cfg.FixturePath))
		os.Exit(1)
	}
	log.Info("fixture loaded",
		slog.String("path", cfg.FixturePath),
		slog.Int("products", len(fx.Products)),
		slog.Int("stock", len(fx.Stock)),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(fx, log).routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
