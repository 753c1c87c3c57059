package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/easyshop/core/bootstrap"
	"github.com/m3rciful/easyshop/core/logger"
)

// Seeder inserts products missing from the products table. Existing rows are left untouched.
func Seeder(products []Product) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		if len(products) == 0 {
			return nil
		}
		start := time.Now()
		n, err := NewPostgresStore(db).Insert(ctx, products)
		if err != nil {
			logger.SEED.Error("catalog seed failed",
				slog.String("event", "seed.catalog"),
				slog.String("err", err.Error()),
			)
			return err
		}
		logger.SEED.Info("catalog seeded",
			slog.String("event", "seed.catalog"),
			slog.Int64("count", n),
			slog.Int("products", len(products)),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	})
}
