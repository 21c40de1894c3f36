// Package app composes one export run from its parts: config in, fx graph
// up, exporter drained, everything released. Unlike a resident daemon the
// app shuts itself down when the run finishes.
package app

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nkowalski2/imsgx/internal/bus"
	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/config"
	"github.com/nkowalski2/imsgx/internal/export"
	"github.com/nkowalski2/imsgx/internal/lock"
	"github.com/nkowalski2/imsgx/internal/logging"
	"github.com/nkowalski2/imsgx/internal/progress"
	"github.com/nkowalski2/imsgx/internal/vault"
)

// VaultFile is the sqlite-format output database inside the export directory.
const VaultFile = "messages.sqlite"

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	Config *config.Config
	RunID  string
}

// Module returns the fx module for one export run, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideSource,
			provideChatDB,
			provideCopier,
			provideSink,
			provideExporter,
			provideProgress,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Dir:   p.Config.ExportPath,
		RunID: p.RunID,
		Quiet: p.Config.Quiet,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("locking export directory", zap.String("dir", p.Config.ExportPath))
	return lock.Acquire(p.Config.ExportPath, p.RunID)
}

func provideSource(p Params, logger *zap.Logger) (*Source, error) {
	src, err := ResolveSource(p.Config)
	if err != nil {
		return nil, err
	}
	logger.Info("source resolved",
		zap.String("path", src.Root),
		zap.String("platform", src.Platform.String()),
		zap.String("db", src.DBPath))
	return src, nil
}

func provideChatDB(src *Source, logger *zap.Logger) (*chatdb.DB, error) {
	db, err := chatdb.Open(src.DBPath)
	if err != nil {
		return nil, err
	}
	f := db.Features()
	logger.Info("chat.db opened",
		zap.Bool("threads", f.ThreadOriginator),
		zap.Bool("edits", f.DateEdited),
		zap.Bool("unsends", f.DateRetracted))
	return db, nil
}

func provideCopier(p Params, src *Source, b *bus.Bus, logger *zap.Logger) *export.Copier {
	return export.NewCopier(p.Config.CopyMode, p.Config.ExportPath, src.Resolve, b, logger)
}

// provideSink selects the output format. The vault handle is nil for the
// transcript formats; the lifecycle hook closes it when present.
func provideSink(p Params, src *Source, logger *zap.Logger) (export.Sink, *vault.DB, error) {
	switch p.Config.Format {
	case config.FormatSQLite:
		vdb, err := vault.Open(filepath.Join(p.Config.ExportPath, VaultFile))
		if err != nil {
			return nil, nil, err
		}
		result, err := vdb.Migrate()
		if err != nil {
			_ = vdb.Close()
			return nil, nil, err
		}
		if result.Changed {
			logger.Info("vault migrations applied", zap.Uint("version", result.Version))
		} else {
			logger.Info("vault migrations up to date", zap.Uint("version", result.Version))
		}
		sink, err := export.NewVaultSink(vdb, &vault.Run{
			ID:         p.RunID,
			SourcePath: src.DBPath,
			Platform:   src.Platform.String(),
			StartDate:  p.Config.StartDate,
			EndDate:    p.Config.EndDate,
		})
		if err != nil {
			_ = vdb.Close()
			return nil, nil, err
		}
		return sink, vdb, nil
	case config.FormatHTML:
		sink, err := export.NewHTMLSink(p.Config.ExportPath)
		return sink, nil, err
	default:
		sink, err := export.NewTXTSink(p.Config.ExportPath)
		return sink, nil, err
	}
}

func provideExporter(p Params, db *chatdb.DB, sink export.Sink, copier *export.Copier, b *bus.Bus, logger *zap.Logger) (*export.Exporter, error) {
	qc, err := chatdb.ParseQueryContext(p.Config.StartDate, p.Config.EndDate)
	if err != nil {
		return nil, err
	}
	return export.New(db, sink, copier, b, logger, export.Options{
		RunID:        p.RunID,
		Format:       p.Config.Format,
		SelfName:     p.Config.SelfName,
		Conversation: p.Config.Conversation,
		Query:        qc,
	}), nil
}

func provideProgress(p Params, b *bus.Bus) *progress.Sink {
	return progress.New(b, p.Config.Quiet)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, exporter *export.Exporter, prog *progress.Sink, lk *lock.Lock, db *chatdb.DB, vdb *vault.DB, logger *zap.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			prog.Start(runCtx)

			// The run owns the process: when it returns, shut fx down
			// with the matching exit code.
			go func() {
				defer close(done)
				_, err := exporter.Run(runCtx)
				switch {
				case errors.Is(err, context.Canceled):
					logger.Warn("export interrupted")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				case err != nil:
					logger.Error("export failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				default:
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("export still draining at shutdown")
			}
			prog.Stop()

			if err := db.Close(); err != nil {
				logger.Warn("error closing chat.db", zap.Error(err))
			}
			if vdb != nil {
				if err := vdb.Close(); err != nil {
					logger.Warn("error closing vault", zap.Error(err))
				}
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("run stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
