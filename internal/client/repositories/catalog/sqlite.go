package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, options []avatar.Option, at time.Time) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_options`); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		for _, o := range options {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO catalog_options (id, category, option_value, price, fetched_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET category = excluded.category,
					option_value = excluded.option_value,
					price = excluded.price,
					fetched_at = excluded.fetched_at
			`, o.ID, string(o.Category), o.Value, o.Price, at.UnixMilli())
			if err != nil {
				return fmt.Errorf("insert option %d: %w", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]avatar.Option, error) {
	return r.query(ctx, `SELECT id, category, option_value, price FROM catalog_options`)
}

func (r *SQLiteRepository) ListByCategory(ctx context.Context, c avatar.Category) ([]avatar.Option, error) {
	return r.query(ctx, `SELECT id, category, option_value, price FROM catalog_options WHERE category = ?`, string(c))
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]avatar.Option, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer rows.Close()

	var result []avatar.Option
	for rows.Next() {
		var o avatar.Option
		var category string
		if err := rows.Scan(&o.ID, &category, &o.Value, &o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		o.Category = avatar.Category(category)
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}

	avatar.SortOptions(result)
	return result, nil
}

func (r *SQLiteRepository) FetchedAt(ctx context.Context) (time.Time, error) {
	var ms sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MIN(fetched_at) FROM catalog_options`).Scan(&ms); err != nil {
		return time.Time{}, fmt.Errorf("failed to read catalog age: %w", err)
	}
	if !ms.Valid {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms.Int64), nil
}
