package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/balancebuddy/internal/client/migrations"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/balancebuddy/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local cache repositories.
type Repositories struct {
	Metadata metadata.Repository
	Catalog  catalog.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Catalog:  catalog.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate local cache: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the local sqlite cache at dsn and
// brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
