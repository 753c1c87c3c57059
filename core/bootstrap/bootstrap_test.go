package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/easyshop/core/config"
	coredatabase "github.com/m3rciful/easyshop/core/database"
	"github.com/m3rciful/easyshop/core/telegram/state"
)

func noLogger(*coreconfig.Config) error { return nil }

func memorySessions(context.Context, coreconfig.SessionConfig) (state.Storage, error) {
	return state.NewMemoryStorage(), nil
}

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, errors.New("unexpected")
		},
		OpenSessions: memorySessions,
	})
	require.NoError(t, err)
	assert.False(t, connected)
	assert.Nil(t, res.DB)
	assert.NotNil(t, res.Sessions)
	assert.NoError(t, res.Close())
}

func TestRunConnectsMigratesAndSeeds(t *testing.T) {
	db, mock := mockDB(t)
	var steps []string
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return db, nil
		},
		Migrate: func(context.Context, coredatabase.Config) error {
			steps = append(steps, "migrate")
			return nil
		},
		OpenSessions: func(ctx context.Context, cfg coreconfig.SessionConfig) (state.Storage, error) {
			steps = append(steps, "sessions")
			return memorySessions(ctx, cfg)
		},
		Modules: Modules{Seeders: []Seeder{SeederFunc(func(_ context.Context, got *sqlx.DB) error {
			assert.Same(t, db, got)
			steps = append(steps, "seed")
			return nil
		})}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"connect", "migrate", "seed", "sessions"}, steps)
	assert.Same(t, db, res.DB)

	mock.ExpectClose()
	require.NoError(t, res.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunClosesDatabaseWhenMigrationFails(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectClose()
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return db, nil
		},
		Migrate: func(context.Context, coredatabase.Config) error {
			return errors.New("dirty database")
		},
		OpenSessions: memorySessions,
	})
	require.ErrorContains(t, err, "migrations failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunReportsSessionFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		OpenSessions: func(context.Context, coreconfig.SessionConfig) (state.Storage, error) {
			return nil, errors.New("redis down")
		},
	})
	require.ErrorContains(t, err, "session store failed")
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("bad level") },
	})
	assert.ErrorContains(t, err, "logger init failed")
}
