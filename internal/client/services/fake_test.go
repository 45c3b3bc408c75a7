package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupRepos(t *testing.T) *client.Repositories {
	t.Helper()
	return client.NewRepositories(setupDB(t))
}

// ---- fake backend ----

// fakeBackend implements client.Backend in memory. Err fields make the
// matching call fail; Calls records mutating calls in order.
type fakeBackend struct {
	UserID  string
	Session *client.Session

	Profile models.Profile
	Meters  game.Meters
	Tasks   map[int64]models.Task
	Options []avatar.Option
	Active  []avatar.Option
	Journal []models.JournalEntry

	SignUpRet  client.Registration
	SignUpErr  error
	SignInErr  error
	SignOutErr error
	RestoreErr error
	PingErr    error

	GetProfileErr    error
	InsertProfileErr error
	UpdateCoinsErr   error
	UpdateNameErr    error
	GetMetersErr     error
	UpdateMeterErr   error
	SetCompletedErr  error
	ListOptionsErr   error
	CategoryErr      error
	ActiveErr        error
	InsertOwnErr     error
	UpdateAvatarErr  error
	WatchErr         error

	// PurchaseErrs is consumed one per PurchaseOptions call.
	PurchaseErrs []error

	LastSignUpEmail    string
	LastSignUpPassword string
	LastSignUpName     string
	LastInsertProfile  models.Profile
	LastRestoreToken   string
	LastPurchase       []avatar.Option
	LastChanges        avatar.Changes
	LastOwnershipIDs   []int64
	LastOwnershipOn    bool
	LastAvatarName     string

	PurchaseCalls    int
	ListOptionsCalls int
	Calls            []string

	MeterUpdates []game.Meters
	CoinUpdates  []int

	onSession func(*client.Session)
	nextID    int64
}

var _ client.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		UserID:  "u-1",
		Profile: models.Profile{ID: "u-1", FullName: "Ann", AvatarName: "Pip", CoinBalance: 50},
		Meters:  game.Meters{Health: 50, Happiness: 50, SelfActualization: 50, SocialConnection: 50},
		Tasks:   map[int64]models.Task{},
		nextID:  100,
	}
}

func (f *fakeBackend) setSession(s *client.Session) {
	f.Session = s
	if f.onSession != nil {
		f.onSession(s)
	}
}

func (f *fakeBackend) SignUp(_ context.Context, email, password, fullName string) (client.Registration, error) {
	f.LastSignUpEmail, f.LastSignUpPassword, f.LastSignUpName = email, password, fullName
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeBackend) SignIn(_ context.Context, email, _ string) (*client.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	s := &client.Session{AccessToken: "at", RefreshToken: "rt-" + email, UserID: f.UserID, Email: email}
	f.setSession(s)
	return s, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.Calls = append(f.Calls, "sign_out")
	f.setSession(nil)
	return f.SignOutErr
}

func (f *fakeBackend) Restore(_ context.Context, refreshToken string) (*client.Session, error) {
	f.LastRestoreToken = refreshToken
	if f.RestoreErr != nil {
		return nil, f.RestoreErr
	}
	s := &client.Session{AccessToken: "at2", RefreshToken: refreshToken + "-rotated", UserID: f.UserID, Email: "ann@example.com"}
	f.setSession(s)
	return s, nil
}

func (f *fakeBackend) CurrentUserID() (string, error) {
	if f.UserID == "" {
		return "", common.ErrNotLoggedIn
	}
	return f.UserID, nil
}

func (f *fakeBackend) OnSessionChange(fn func(*client.Session)) { f.onSession = fn }

func (f *fakeBackend) Ping(context.Context) error { return f.PingErr }

func (f *fakeBackend) GetProfile(context.Context, string) (models.Profile, error) {
	return f.Profile, f.GetProfileErr
}

func (f *fakeBackend) InsertProfile(_ context.Context, p models.Profile) error {
	f.LastInsertProfile = p
	return f.InsertProfileErr
}

func (f *fakeBackend) UpdateCoinBalance(_ context.Context, _ string, coins int) error {
	f.Calls = append(f.Calls, "coins")
	if f.UpdateCoinsErr != nil {
		return f.UpdateCoinsErr
	}
	f.Profile.CoinBalance = coins
	return nil
}

func (f *fakeBackend) UpdateAvatarName(_ context.Context, _ string, name string) error {
	f.Calls = append(f.Calls, "avatar_name")
	f.LastAvatarName = name
	return f.UpdateNameErr
}

func (f *fakeBackend) GetMeters(context.Context, string) (game.Meters, error) {
	return f.Meters, f.GetMetersErr
}

func (f *fakeBackend) UpdateMeter(_ context.Context, _ string, c game.Category, value int) error {
	f.Calls = append(f.Calls, "meter")
	if f.UpdateMeterErr != nil {
		return f.UpdateMeterErr
	}
	f.Meters.Set(c, value)
	return nil
}

func (f *fakeBackend) ListTasks(context.Context, string) ([]models.Task, error) {
	out := make([]models.Task, 0, len(f.Tasks))
	for id := int64(0); id <= f.nextID; id++ {
		if t, ok := f.Tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetTask(_ context.Context, id int64) (models.Task, error) {
	t, ok := f.Tasks[id]
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	return t, nil
}

func (f *fakeBackend) CreateTask(_ context.Context, userID string, d models.TaskDraft) (models.Task, error) {
	f.nextID++
	t := models.Task{ID: f.nextID, UserID: userID, Description: d.Description, Category: d.Category, Due: d.Due, Complexity: d.Complexity}
	f.Tasks[t.ID] = t
	return t, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id int64, d models.TaskDraft) error {
	f.Calls = append(f.Calls, "update_task")
	t := f.Tasks[id]
	t.Description, t.Category, t.Due, t.Complexity = d.Description, d.Category, d.Due, d.Complexity
	f.Tasks[id] = t
	return nil
}

func (f *fakeBackend) SetTaskCompleted(_ context.Context, id int64, completed bool) error {
	f.Calls = append(f.Calls, "task")
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	t := f.Tasks[id]
	t.Completed = completed
	f.Tasks[id] = t
	return nil
}

func (f *fakeBackend) DeleteTask(_ context.Context, id int64) error {
	f.Calls = append(f.Calls, "delete_task")
	delete(f.Tasks, id)
	return nil
}

func (f *fakeBackend) ListOptions(context.Context) ([]avatar.Option, error) {
	f.ListOptionsCalls++
	if f.ListOptionsErr != nil {
		return nil, f.ListOptionsErr
	}
	return append([]avatar.Option(nil), f.Options...), nil
}

func (f *fakeBackend) OptionsByCategoryWithOwnership(_ context.Context, _ string, c avatar.Category) ([]avatar.Option, error) {
	if f.CategoryErr != nil {
		return nil, f.CategoryErr
	}
	var out []avatar.Option
	for _, o := range f.Options {
		if o.Category == c {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeBackend) ActiveOptions(context.Context, string) ([]avatar.Option, error) {
	return append([]avatar.Option(nil), f.Active...), f.ActiveErr
}

func (f *fakeBackend) InsertOwnership(_ context.Context, _ string, ids []int64, active bool) error {
	f.Calls = append(f.Calls, "ownership")
	f.LastOwnershipIDs, f.LastOwnershipOn = ids, active
	return f.InsertOwnErr
}

func (f *fakeBackend) PurchaseOptions(_ context.Context, _ string, cart []avatar.Option) error {
	f.Calls = append(f.Calls, "purchase")
	f.PurchaseCalls++
	f.LastPurchase = cart
	if len(f.PurchaseErrs) > 0 {
		err := f.PurchaseErrs[0]
		f.PurchaseErrs = f.PurchaseErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, o := range cart {
		f.Profile.CoinBalance -= o.Price
	}
	return nil
}

func (f *fakeBackend) UpdateAvatarOptions(_ context.Context, _ string, ch avatar.Changes) error {
	f.Calls = append(f.Calls, "update_avatar")
	f.LastChanges = ch
	return f.UpdateAvatarErr
}

func (f *fakeBackend) ListJournal(context.Context, string) ([]models.JournalEntry, error) {
	return f.Journal, nil
}

func (f *fakeBackend) AddJournal(_ context.Context, userID, content string, date models.Date) (models.JournalEntry, error) {
	f.nextID++
	e := models.JournalEntry{ID: f.nextID, UserID: userID, Content: content, EntryDate: date}
	f.Journal = append(f.Journal, e)
	return e, nil
}

func (f *fakeBackend) WatchMeters(_ context.Context, _ string, fn func(game.Meters)) error {
	for _, m := range f.MeterUpdates {
		fn(m)
	}
	return f.WatchErr
}

func (f *fakeBackend) WatchProfile(_ context.Context, _ string, fn func(models.Profile)) error {
	for _, c := range f.CoinUpdates {
		p := f.Profile
		p.CoinBalance = c
		fn(p)
	}
	return f.WatchErr
}

// ---- fake renderer ----

type fakeRenderer struct {
	Generated   avatar.Config
	GenerateErr error
	LastSeed    string
}

func (r *fakeRenderer) URL(cfg avatar.Config) string {
	return fmt.Sprintf("https://avatars.test/svg?n=%d", len(cfg))
}

func (r *fakeRenderer) Generate(_ context.Context, seed string) (avatar.Config, error) {
	r.LastSeed = seed
	return r.Generated, r.GenerateErr
}
