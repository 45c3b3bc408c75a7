package client

import (
	"context"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/client/supabase"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
)

type Session = supabase.Session

// Registration is the outcome of a sign-up. SignedIn is false when the
// project requires an email confirmation first.
type Registration struct {
	UserID   string
	SignedIn bool
}

// Backend is every remote call the client makes, in domain terms.
type Backend interface {
	SignUp(ctx context.Context, email, password, fullName string) (Registration, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	Restore(ctx context.Context, refreshToken string) (*Session, error)
	CurrentUserID() (string, error)
	OnSessionChange(fn func(*Session))
	Ping(ctx context.Context) error

	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	InsertProfile(ctx context.Context, p models.Profile) error
	UpdateCoinBalance(ctx context.Context, userID string, coins int) error
	UpdateAvatarName(ctx context.Context, userID, name string) error

	GetMeters(ctx context.Context, userID string) (game.Meters, error)
	UpdateMeter(ctx context.Context, userID string, c game.Category, value int) error

	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, userID string, d models.TaskDraft) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, d models.TaskDraft) error
	SetTaskCompleted(ctx context.Context, id int64, completed bool) error
	DeleteTask(ctx context.Context, id int64) error

	ListOptions(ctx context.Context) ([]avatar.Option, error)
	OptionsByCategoryWithOwnership(ctx context.Context, userID string, c avatar.Category) ([]avatar.Option, error)
	ActiveOptions(ctx context.Context, userID string) ([]avatar.Option, error)
	InsertOwnership(ctx context.Context, userID string, optionIDs []int64, active bool) error
	PurchaseOptions(ctx context.Context, userID string, cart []avatar.Option) error
	UpdateAvatarOptions(ctx context.Context, userID string, ch avatar.Changes) error

	ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error)
	AddJournal(ctx context.Context, userID, content string, date models.Date) (models.JournalEntry, error)

	// WatchMeters and WatchProfile stream updates of the user's row to fn
	// until ctx is done (nil) or the connection drops (common.ErrUnavailable).
	WatchMeters(ctx context.Context, userID string, fn func(game.Meters)) error
	WatchProfile(ctx context.Context, userID string, fn func(models.Profile)) error
}
