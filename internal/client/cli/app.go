package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/tracker/internal/client/api"
	"github.com/iudanet/tracker/internal/client/connectivity"
	"github.com/iudanet/tracker/internal/client/data"
	"github.com/iudanet/tracker/internal/client/iocli"
	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/client/storage/boltdb"
	"github.com/iudanet/tracker/internal/client/sync"
	"github.com/iudanet/tracker/internal/config"
	"github.com/iudanet/tracker/internal/logging"
)

// App is the wired client: store, API client, prober, engine and services.
type App struct {
	cli    *Cli
	store  *boltdb.Storage
	prober *connectivity.Prober
	engine *sync.Engine
	logger *slog.Logger
	logs   io.Closer
}

// OpenApp opens the local store and wires the client for cfg.
// The registry receives the sync metrics; nil disables them.
func OpenApp(ctx context.Context, cfg *config.Client, stdio iocli.IO, reg prometheus.Registerer) (*App, error) {
	logger, logs := logging.New(cfg.Log)

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := api.NewClient(cfg.ServerURL, storedToken(store), cfg.RequestTimeout)
	prober := connectivity.NewProber(client, cfg.ProbeInterval, logger)

	opts := []sync.Option{
		sync.WithMaxRetries(cfg.MaxRetries),
		sync.WithLossReporter(sync.LossReporterFunc(func(loss sync.QueueLoss) {
			stdio.Printf("⚠️  Change to %s %s was dropped after repeated failures: %v\n",
				loss.Item.EntityType, shortID(loss.Item.EntityID), loss.Err)
		})),
	}
	if reg != nil {
		opts = append(opts, sync.WithMetrics(sync.NewMetrics(reg)))
	}
	engine := sync.NewEngine(store, client, prober, logger, opts...)

	app := &App{
		store:  store,
		prober: prober,
		engine: engine,
		logger: logger,
		logs:   logs,
	}
	app.cli = New(stdio, store, engine,
		data.NewTaskService(store, engine),
		data.NewHabitService(store, engine))
	app.cli.serverURL = cfg.ServerURL
	return app, nil
}

// storedToken reads the bearer token from the auth bucket on every request
func storedToken(auth storage.AuthStorage) api.TokenSource {
	return api.TokenFunc(func(ctx context.Context) (string, error) {
		creds, err := auth.GetAuth(ctx)
		if err != nil {
			return "", err
		}
		return creds.AccessToken, nil
	})
}

// Probe checks the server once so that mutations sync right away when it is reachable.
// Without stored credentials the probe is skipped and the client stays offline.
func (a *App) Probe(ctx context.Context) bool {
	if _, err := a.store.GetAuth(ctx); err != nil {
		return false
	}
	return a.prober.Probe(ctx)
}

// Close waits for background synchronization and releases the store
func (a *App) Close() error {
	a.engine.Wait()
	a.engine.Close()

	err := a.store.Close()
	if cerr := a.logs.Close(); err == nil {
		err = cerr
	}
	return err
}
