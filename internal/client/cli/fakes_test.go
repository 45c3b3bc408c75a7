package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/config"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/client/services"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

// ------------ fake services ------------

type fakeAuth struct {
	RegisterRet client.Registration
	RegisterErr error
	LoginErr    error
	RestoreRet  *client.Session
	RestoreErr  error
	LogoutErr   error
	PingErr     error
	Email       string

	SeenEmail, LastName, LastPassword, LastConfirm string
	Logouts                                        int
}

func (f *fakeAuth) Register(_ context.Context, email, fullName string, password, confirm []byte) (client.Registration, error) {
	f.SeenEmail, f.LastName, f.LastPassword, f.LastConfirm = email, fullName, string(password), string(confirm)
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAuth) Login(_ context.Context, email string, password []byte) (*client.Session, error) {
	f.SeenEmail, f.LastPassword = email, string(password)
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return &client.Session{Email: email, UserID: "u-1"}, nil
}

func (f *fakeAuth) Restore(context.Context) (*client.Session, error) { return f.RestoreRet, f.RestoreErr }

func (f *fakeAuth) Logout(context.Context) error {
	f.Logouts++
	return f.LogoutErr
}

func (f *fakeAuth) Ping(context.Context) error { return f.PingErr }
func (f *fakeAuth) LastEmail(context.Context) (string, error) { return f.Email, nil }

type fakeTasks struct {
	Tasks     map[int64]models.Task
	Toggled   []int64
	Created   []models.TaskDraft
	Updated   map[int64]models.TaskDraft
	Deleted   []int64
	ToggleRet services.ToggleResult
	ToggleErr error
}

func (f *fakeTasks) List(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for id := int64(1); id <= 100; id++ {
		if t, ok := f.Tasks[id]; ok && filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Get(_ context.Context, id int64) (models.Task, error) {
	t, ok := f.Tasks[id]
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	return t, nil
}

func (f *fakeTasks) Create(_ context.Context, d models.TaskDraft) (models.Task, error) {
	f.Created = append(f.Created, d)
	return models.Task{ID: 42}, nil
}

func (f *fakeTasks) Update(_ context.Context, id int64, d models.TaskDraft) error {
	if f.Updated == nil {
		f.Updated = map[int64]models.TaskDraft{}
	}
	f.Updated[id] = d
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id int64) error {
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *fakeTasks) Toggle(_ context.Context, id int64) (services.ToggleResult, error) {
	f.Toggled = append(f.Toggled, id)
	return f.ToggleRet, f.ToggleErr
}

type fakeBuddy struct {
	Dash         models.Dashboard
	DashErr      error
	MeterUpdates []game.Meters
	CoinUpdates  []int
}

func (f *fakeBuddy) Dashboard(context.Context) (models.Dashboard, error) { return f.Dash, f.DashErr }

func (f *fakeBuddy) WatchMeters(ctx context.Context, fn func(game.Meters)) error {
	for _, m := range f.MeterUpdates {
		fn(m)
	}
	<-ctx.Done()
	return nil
}

func (f *fakeBuddy) WatchCoins(ctx context.Context, fn func(int)) error {
	for _, c := range f.CoinUpdates {
		fn(c)
	}
	<-ctx.Done()
	return nil
}

type fakeShop struct {
	Active  []avatar.Option
	Options []avatar.Option

	Saved       []avatar.State
	Bought      []avatar.Option
	SaveErr     error
	Generated   map[string]avatar.Config
	CreatedName string
	CreatedCfg  avatar.Config
	CreateErr   error
}

func (f *fakeShop) LoadEditor(context.Context) (avatar.State, error) {
	return avatar.Reduce(avatar.NewState(), avatar.Load{Options: f.Active}), nil
}

func (f *fakeShop) CategoryOptions(_ context.Context, c avatar.Category) ([]avatar.Option, error) {
	var out []avatar.Option
	for _, o := range f.Options {
		if o.Category == c {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeShop) CoinBalance(context.Context) (int, error) { return 100, nil }

func (f *fakeShop) PurchaseOne(_ context.Context, st avatar.State, o avatar.Option) (avatar.State, error) {
	f.Bought = append(f.Bought, o)
	return avatar.Reduce(st, avatar.MarkPurchased{ID: o.ID}), nil
}

func (f *fakeShop) SaveChanges(_ context.Context, st avatar.State) (avatar.State, string, error) {
	f.Saved = append(f.Saved, st)
	if f.SaveErr != nil {
		return st, "", f.SaveErr
	}
	msg := services.MsgSaved
	if len(avatar.Cart(st)) > 0 {
		msg = services.MsgPurchasedSaved
	}
	st = avatar.Reduce(st, avatar.AfterSave{})
	st.ShowPurchaseModal = false
	return st, msg, nil
}

func (f *fakeShop) Preview(st avatar.State) string {
	return "https://avatars.test/" + avatar.ConfigOf(st.Selected)[avatar.Accessories]
}

func (f *fakeShop) Catalog(context.Context) ([]avatar.Option, error) { return f.Options, nil }

func (f *fakeShop) GenerateCharacter(_ context.Context, seed string) (avatar.Config, string, error) {
	return f.Generated[seed], "https://avatars.test/" + seed, nil
}

func (f *fakeShop) CreateCharacter(_ context.Context, name string, cfg avatar.Config) error {
	f.CreatedName, f.CreatedCfg = name, cfg
	return f.CreateErr
}

type fakeJournal struct {
	Entries []models.JournalEntry
}

func (f *fakeJournal) List(context.Context) ([]models.JournalEntry, error) { return f.Entries, nil }

func (f *fakeJournal) Add(_ context.Context, content string, date models.Date) (models.JournalEntry, error) {
	e := models.JournalEntry{ID: int64(len(f.Entries) + 1), Content: content, EntryDate: date}
	f.Entries = append(f.Entries, e)
	return e, nil
}

// ------------ helpers ------------

type testApp struct {
	*App
	out     *bytes.Buffer
	auth    *fakeAuth
	tasks   *fakeTasks
	buddy   *fakeBuddy
	shop    *fakeShop
	journal *fakeJournal
}

func newTestApp(t *testing.T, lines ...string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil)

	ta := &testApp{
		out:     &bytes.Buffer{},
		auth:    &fakeAuth{},
		tasks:   &fakeTasks{Tasks: map[int64]models.Task{}},
		buddy:   &fakeBuddy{},
		shop:    &fakeShop{Generated: map[string]avatar.Config{}},
		journal: &fakeJournal{},
	}
	ta.App = &App{
		config:         &config.Config{RequestTimeout: 5 * time.Second, OnlineCheckInterval: time.Second},
		log:            logging.Nop(),
		authService:    ta.auth,
		taskService:    ta.tasks,
		buddyService:   ta.buddy,
		shopService:    ta.shop,
		journalService: ta.journal,
		reader:         bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		out:            ta.out,
	}
	return ta
}
