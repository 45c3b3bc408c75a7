package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/dbx"
)

const insertOption = `INSERT INTO customization_options (category, option_value, price)
	SELECT $1, $2, $3
	WHERE NOT EXISTS (
		SELECT 1 FROM customization_options WHERE category = $1 AND option_value = $2
	)`

// Seed inserts the options that are not in the table yet, all in one
// transaction, and returns how many rows were added.
func Seed(ctx context.Context, db *sql.DB, options []avatar.Option) (int, error) {
	inserted := 0

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, o := range options {
			res, err := tx.ExecContext(ctx, insertOption, string(o.Category), o.Value, o.Price)
			if err != nil {
				return fmt.Errorf("db error: insert %s=%s: %w", o.Category, o.Value, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
