// Package catalog caches the customization option catalog locally, so the
// customizer and character creation do not refetch it on every screen.
package catalog

import (
	"context"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
)

type Repository interface {
	// ReplaceAll swaps the cached catalog for options, stamped with at.
	ReplaceAll(ctx context.Context, options []avatar.Option, at time.Time) error
	List(ctx context.Context) ([]avatar.Option, error)
	ListByCategory(ctx context.Context, c avatar.Category) ([]avatar.Option, error)
	// FetchedAt is the time of the last ReplaceAll, zero when the cache is empty.
	FetchedAt(ctx context.Context) (time.Time, error)
}
