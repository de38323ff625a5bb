package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/app"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/memstore"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/notify"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/redisstore"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/sqlitestore"
	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/infra/storefrontapi"
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
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log, os.Stdin, os.Stdout); err != nil {
		log.Error("storefront failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, in io.Reader, out io.Writer) error {
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Options{
		Service:  "storefront",
		Exporter: cfg.TraceExporter,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("tracer shutdown error", slog.Any("err", err))
		}
	}()

	api, err := storefrontapi.New(cfg.APIBaseURL, storefrontapi.WithTimeout(cfg.APITimeout))
	if err != nil {
		return err
	}

	snapshots, closeSnapshots, err := openSnapshots(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSnapshots(); err != nil {
			log.Error("snapshot store close error", slog.Any("err", err))
		}
	}()

	notifier := notify.Multi{notify.NewLogger(log), notify.NewWriter(out)}
	store, err := app.NewStore(ctx, api, api, snapshots, notifier,
		app.WithLogger(log),
		app.WithStockReportConcurrency(cfg.StockReportConcurrency),
	)
	if err != nil {
		return err
	}

	sh := &shell{store: store, products: api, out: out}
	return repl(ctx, sh, in, out)
}

// openSnapshots returns the configured snapshot backend and its closer.
func openSnapshots(ctx context.Context, cfg config.Config, log *slog.Logger) (app.SnapshotStore, func() error, error) {
	log.Info("opening snapshot store", slog.String("backend", cfg.SnapshotBackend), slog.String("key", cfg.SnapshotKey))

	switch cfg.SnapshotBackend {
	case config.BackendMemory:
		return memstore.New().Snapshots(cfg.SnapshotKey), func() error { return nil }, nil
	case config.BackendSQLite:
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db.Snapshots(cfg.SnapshotKey), db.Close, nil
	case config.BackendRedis:
		rs := redisstore.New(cfg.RedisAddr,
			redisstore.WithLogger(log),
			redisstore.WithConnectRetry(5, 500*time.Millisecond),
		)
		if err := rs.Initialize(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		return rs.Snapshots(cfg.SnapshotKey), rs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}

// repl reads commands until quit, end of input or ctx cancellation.
func repl(ctx context.Context, sh *shell, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprintln(out, "rocketshoes cart, type help for commands")
	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			quit, err := sh.exec(ctx, line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if quit {
				return nil
			}
		}
	}
}
