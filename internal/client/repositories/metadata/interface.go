// Package metadata is the local key/value store: the persisted session and
// the last dashboard snapshot shown in offline mode.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyRefreshToken = "session.refresh_token"
	KeyUserID       = "session.user_id"
	KeyEmail        = "session.email"
	KeyDashboard    = "dashboard.snapshot"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
