package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/easyshop/core/logger"
)

const (
	listQuery = `SELECT id, title, description, price, active FROM products WHERE active ORDER BY id`
	getQuery  = `SELECT id, title, description, price, active FROM products WHERE id = $1 AND active`
	// The query is matched with ILIKE on title and description.
	searchQuery = `SELECT id, title, description, price, active FROM products
		WHERE active AND (title ILIKE $1 OR description ILIKE $1) ORDER BY id LIMIT $2`
	upsertQuery = `INSERT INTO products (id, title, description, price, active)
		VALUES (:id, :title, :description, :price, :active)
		ON CONFLICT (id) DO NOTHING`
)

// PostgresStore reads the products table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps db.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	start := time.Now()
	var out []Product
	if err := s.db.SelectContext(ctx, &out, listQuery); err != nil {
		logQueryError(ctx, "catalog.list", start, err)
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Product, error) {
	start := time.Now()
	var p Product
	err := s.db.GetContext(ctx, &p, getQuery, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Product{}, ErrNotFound
	case err != nil:
		logQueryError(ctx, "catalog.get", start, err)
		return Product{}, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query, limit = normalizeQuery(query, limit)
	start := time.Now()
	var out []Product
	if err := s.db.SelectContext(ctx, &out, searchQuery, "%"+query+"%", limit); err != nil {
		logQueryError(ctx, "catalog.search", start, err)
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	return out, nil
}

// Insert adds products whose id is not taken yet and returns how many were written.
func (s *PostgresStore) Insert(ctx context.Context, products []Product) (int64, error) {
	var total int64
	for _, p := range products {
		res, err := s.db.NamedExecContext(ctx, upsertQuery, p)
		if err != nil {
			return total, fmt.Errorf("catalog: insert %d: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

func logQueryError(ctx context.Context, event string, start time.Time, err error) {
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelError, event,
		slog.String("status", "fail"),
		slog.Duration("duration", logger.Took(start)),
		slog.String("err", err.Error()),
	)
}
