package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"calendar-sync/core/config"
	"calendar-sync/core/database"
	"calendar-sync/core/logger"
	"calendar-sync/core/notify"
	"calendar-sync/core/storage"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/directory"
	"calendar-sync/feature/directory/google"
	"calendar-sync/feature/directory/graph"
	calsync "calendar-sync/feature/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// signalContext is cancelled on SIGINT or SIGTERM. Runs observe the
// cancellation between users and return a partial summary.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runtime holds the process-wide dependencies shared by the commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *calendar.Store
	closers []func() error
}

// newRuntime loads and validates the configuration, builds the logger and
// connects to the database.
func newRuntime() (*runtime, error) {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	// 3. Connect to Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	rt := &runtime{
		cfg:    cfg,
		logger: logg,
		db:     db,
		store:  calendar.NewStore(db),
	}
	rt.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return rt, nil
}

func (rt *runtime) onClose(fn func() error) {
	rt.closers = append(rt.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger.Warn("Failed to release resources", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// newProvider builds the configured directory provider.
func (rt *runtime) newProvider(ctx context.Context) (directory.Provider, error) {
	cfg := rt.cfg.Provider
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case directory.KindGoogle:
		client, err := google.New(ctx, cfg.Google, cfg.Timeout, rt.logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := graph.New(cfg.Graph, cfg.Timeout, rt.logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// newOrchestrator wires the provider, the run lock and the report sinks.
// The archive is nil when storage is disabled.
func (rt *runtime) newOrchestrator(ctx context.Context) (*calsync.Orchestrator, *calsync.Archive, error) {
	provider, err := rt.newProvider(ctx)
	if err != nil {
		return nil, nil, err
	}
	rt.logger.Info("Directory provider ready", zap.String("kind", rt.cfg.Provider.Kind))

	var sinks []calsync.ReportSink
	var archive *calsync.Archive

	if rt.cfg.Storage.Enabled {
		client, err := storage.NewClient(rt.cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.EnsureBucket(ctx, client, rt.cfg.Storage.Bucket, rt.cfg.Storage.Region); err != nil {
			return nil, nil, err
		}
		archive = calsync.NewArchive(client, rt.cfg.Storage.Bucket)
		sinks = append(sinks, archive)
		rt.logger.Info("Run reports are archived", zap.String("bucket", rt.cfg.Storage.Bucket))
	}

	if rt.cfg.Notify.Enabled {
		client, err := notify.NewClient(rt.cfg.Notify.URL, rt.logger)
		if err != nil {
			return nil, nil, err
		}
		rt.onClose(client.Close)

		publisher := notify.NewPublisher(client, rt.cfg.Notify.Exchange, rt.logger)
		if err := publisher.DeclareTopology(); err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, calsync.NewNotifier(publisher, rt.cfg.Notify))
		rt.logger.Info("Run notifications are published", zap.String("exchange", rt.cfg.Notify.Exchange))
	}

	if rt.cfg.Sync.MaxParallelism > 1 {
		rt.logger.Info("sync.max_parallelism is ignored, users are processed sequentially",
			zap.Int("max_parallelism", rt.cfg.Sync.MaxParallelism))
	}

	locker := database.NewLocker(rt.db)
	orch := calsync.NewOrchestrator(rt.store, provider, locker, rt.cfg.Sync, rt.logger, sinks...)
	return orch, archive, nil
}
