package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"cloud.google.com/go/bigtable"
	"cloud.google.com/go/pubsub"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cun0/sensor-ingest/internal/config"
	"github.com/cun0/sensor-ingest/internal/httpserver"
	"github.com/cun0/sensor-ingest/internal/ingest"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
	"github.com/cun0/sensor-ingest/internal/observability"
	"github.com/cun0/sensor-ingest/internal/repo"
	"github.com/cun0/sensor-ingest/internal/subscriber"
)

// Run starts the ingest service and blocks until SIGINT/SIGTERM.
func Run(version, buildTime string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	writer, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	policy, err := ingest.ParseWriteFailurePolicy(cfg.Ingest.OnWriteFailure)
	if err != nil {
		return err
	}

	h := ingest.NewHandler(writer, ingest.Config{
		ColumnFamily:   cfg.Bigtable.ColumnFamily,
		WriteTimeout:   cfg.Ingest.WriteTimeout,
		OnWriteFailure: policy,
	}, logger, metrics)

	// Pull delivery runs next to the push endpoint when a subscription is configured.
	var wg sync.WaitGroup
	subCtx, cancelSub := context.WithCancel(ctx)
	defer cancelSub()

	if cfg.PubSub.Subscription != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.Project)
		if err != nil {
			return fmt.Errorf("pubsub client: %w", err)
		}
		defer client.Close()

		sub := subscriber.New(client, cfg.PubSub.Subscription, cfg.PubSub.MaxOutstanding, h, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sub.Run(subCtx); err != nil {
				logger.PrintError(err, map[string]string{"component": "pubsub_pull"})
				stop()
			}
		}()
	}

	handler := httpserver.BuildHandler(httpserver.Config{
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger, h, reg)

	logger.PrintInfo("service started", map[string]string{
		"version":          version,
		"build_time":       buildTime,
		"storage_backend":  cfg.Storage.Backend,
		"project":          cfg.Bigtable.Project,
		"instance":         cfg.Bigtable.Instance,
		"zone":             cfg.Bigtable.Zone,
		"table":            cfg.Bigtable.Table,
		"column_family":    cfg.Bigtable.ColumnFamily,
		"on_write_failure": policy.String(),
	})

	return httpserver.Serve(ctx, cfg.HTTP, logger, handler, func(ctx context.Context) error {
		cancelSub()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for subscriber: %w", ctx.Err())
		}
	})
}

// openStore returns the row writer for the configured backend and a func
// that releases it.
func openStore(ctx context.Context, cfg config.Config, logger *jsonlog.Logger) (ingest.RowWriter, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := repo.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		cells := repo.NewCellRepo(pool, cfg.Bigtable.Table)
		if err := cells.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return cells, closePool(pool), nil

	case config.BackendBigtable:
		client, err := repo.NewBigtableClient(ctx, cfg.Bigtable)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewBigtableRepo(client, cfg.Bigtable.Table, cfg.Bigtable.MaxRetries), closeClient(client, logger), nil
	}
	return nil, nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
}

func closePool(pool *pgxpool.Pool) func() {
	return func() { pool.Close() }
}

func closeClient(client *bigtable.Client, logger *jsonlog.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.PrintError(err, map[string]string{"component": "bigtable"})
		}
	}
}

func newLogger() *jsonlog.Logger {
	level := jsonlog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := jsonlog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return jsonlog.New(os.Stdout, level)
}
