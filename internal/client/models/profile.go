// Package models defines the rows the client reads from and writes to the
// hosted backend, plus the locally cached dashboard snapshot.
package models

import (
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
)

// Profile is a row of the users table.
type Profile struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	AvatarName  string `json:"avatar_name"`
	CoinBalance int    `json:"coin_balance"`
}

// HasAvatar reports whether character creation has been completed.
func (p Profile) HasAvatar() bool {
	return p.AvatarName != ""
}

// MetersRow is a row of the meters table.
type MetersRow struct {
	UserID string `json:"user_id"`
	game.Meters
}

// Dashboard is what the buddy screen shows. It is also cached locally so the
// last known state can be shown offline.
type Dashboard struct {
	Profile   Profile         `json:"profile"`
	Meters    game.Meters     `json:"meters"`
	Avatar    []avatar.Option `json:"avatar"`
	AvatarURL string          `json:"avatar_url"`
	FetchedAt time.Time       `json:"fetched_at"`
	Offline   bool            `json:"-"`
}
