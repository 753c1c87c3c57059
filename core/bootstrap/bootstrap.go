package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	coredatabase "github.com/m3rciful/easyshop/core/database"
	"github.com/m3rciful/easyshop/core/logger"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(context.Context, coredatabase.Config) error
	OpenSessions func(context.Context, coreconfig.SessionConfig) (state.Storage, error)

	Modules Modules
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	// DB is nil when no database host is configured.
	DB       *sqlx.DB
	Sessions state.Storage
}

// Close releases the session store and the database pool.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Sessions != nil {
		if err := r.Sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sessions: %w", err))
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run initializes the logger, connects to the database, applies migrations,
// runs seeders and opens the session store.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if opts.Database.Enabled() {
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(ctx, opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		res.DB = db

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(ctx, opts.Database); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}

		for i, s := range opts.Modules.Seeders {
			if err := s.Seed(ctx, db); err != nil {
				_ = res.Close()
				return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
			}
		}
	} else {
		logger.DB.Info("database disabled",
			slog.String("event", "db.connect"),
			slog.String("status", "skip"),
		)
	}

	openSessions := opts.OpenSessions
	if openSessions == nil {
		openSessions = state.Open
	}
	sessions, err := openSessions(ctx, opts.Config.Session)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("bootstrap: session store failed: %w", err)
	}
	res.Sessions = sessions

	return res, nil
}
