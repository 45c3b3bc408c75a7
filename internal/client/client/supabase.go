package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/client/supabase"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

// Table and function names on the hosted backend.
const (
	tableUsers     = "users"
	tableMeters    = "meters"
	tableTasks     = "tasks"
	tableOptions   = "customization_options"
	tableOwnership = "user_customization_ownership"
	tableJournal   = "journal_entries"

	rpcPurchase          = "purchase_customization_options"
	rpcUpdateAvatar      = "update_avatar_options"
	rpcOptionsByCategory = "get_customization_options_by_category_with_ownership"
)

// SupabaseBackend implements Backend on a supabase.Client.
type SupabaseBackend struct {
	sb  *supabase.Client
	log logging.Logger
}

func NewSupabaseBackend(sb *supabase.Client, log logging.Logger) *SupabaseBackend {
	return &SupabaseBackend{sb: sb, log: log}
}

func (b *SupabaseBackend) SignUp(ctx context.Context, email, password, fullName string) (Registration, error) {
	res, err := b.sb.Auth().SignUp(ctx, email, password, map[string]any{"fullName": fullName})
	if err != nil {
		return Registration{}, err
	}
	return Registration{UserID: res.User.ID, SignedIn: res.Session != nil}, nil
}

func (b *SupabaseBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return b.sb.Auth().SignInWithPassword(ctx, email, password)
}

func (b *SupabaseBackend) SignOut(ctx context.Context) error {
	return b.sb.Auth().SignOut(ctx)
}

func (b *SupabaseBackend) Restore(ctx context.Context, refreshToken string) (*Session, error) {
	return b.sb.Auth().RefreshSession(ctx, refreshToken)
}

func (b *SupabaseBackend) CurrentUserID() (string, error) {
	s := b.sb.Session()
	if s == nil || s.UserID == "" {
		return "", common.ErrNotLoggedIn
	}
	return s.UserID, nil
}

func (b *SupabaseBackend) OnSessionChange(fn func(*Session)) {
	b.sb.OnSessionChange(fn)
}

func (b *SupabaseBackend) Ping(ctx context.Context) error {
	return b.sb.Auth().Health(ctx)
}

func (b *SupabaseBackend) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := b.sb.From(tableUsers).Select("id, full_name, avatar_name, coin_balance").
		Eq("id", userID).Single().Execute(ctx, &p)
	return p, err
}

func (b *SupabaseBackend) InsertProfile(ctx context.Context, p models.Profile) error {
	row := map[string]any{"id": p.ID, "full_name": p.FullName}
	return b.sb.From(tableUsers).Insert(ctx, []map[string]any{row}, nil)
}

func (b *SupabaseBackend) UpdateCoinBalance(ctx context.Context, userID string, coins int) error {
	return b.sb.From(tableUsers).Eq("id", userID).Update(ctx, map[string]any{"coin_balance": coins}, nil)
}

func (b *SupabaseBackend) UpdateAvatarName(ctx context.Context, userID, name string) error {
	return b.sb.From(tableUsers).Eq("id", userID).Update(ctx, map[string]any{"avatar_name": name}, nil)
}

func (b *SupabaseBackend) GetMeters(ctx context.Context, userID string) (game.Meters, error) {
	var m game.Meters
	err := b.sb.From(tableMeters).Select("health, happiness, self_actualization, social_connection").
		Eq("user_id", userID).Single().Execute(ctx, &m)
	return m, err
}

func (b *SupabaseBackend) UpdateMeter(ctx context.Context, userID string, c game.Category, value int) error {
	if !c.Valid() {
		return fmt.Errorf("%w: meter %q", common.ErrInvalidInput, c)
	}
	return b.sb.From(tableMeters).Eq("user_id", userID).
		Update(ctx, map[string]any{string(c): game.ClampMeter(value)}, nil)
}

func (b *SupabaseBackend) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := b.sb.From(tableTasks).Select("*").Eq("user_id", userID).
		Order("due", true).Order("id", true).Execute(ctx, &tasks)
	return tasks, err
}

func (b *SupabaseBackend) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	err := b.sb.From(tableTasks).Select("*").Eq("id", id).Single().Execute(ctx, &t)
	return t, err
}

func (b *SupabaseBackend) CreateTask(ctx context.Context, userID string, d models.TaskDraft) (models.Task, error) {
	row := models.Task{
		UserID:      userID,
		Description: d.Description,
		Category:    d.Category,
		Due:         d.Due,
		Complexity:  d.Complexity,
	}
	insert := map[string]any{
		"user_id":     row.UserID,
		"description": row.Description,
		"category":    row.Category,
		"due":         row.Due,
		"complexity":  row.Complexity,
		"completed":   false,
	}

	var created []models.Task
	if err := b.sb.From(tableTasks).Select("*").Insert(ctx, []map[string]any{insert}, &created); err != nil {
		return models.Task{}, err
	}
	if len(created) == 0 {
		return row, nil
	}
	return created[0], nil
}

func (b *SupabaseBackend) UpdateTask(ctx context.Context, id int64, d models.TaskDraft) error {
	return b.sb.From(tableTasks).Eq("id", id).Update(ctx, d, nil)
}

func (b *SupabaseBackend) SetTaskCompleted(ctx context.Context, id int64, completed bool) error {
	return b.sb.From(tableTasks).Eq("id", id).Update(ctx, map[string]any{"completed": completed}, nil)
}

func (b *SupabaseBackend) DeleteTask(ctx context.Context, id int64) error {
	return b.sb.From(tableTasks).Eq("id", id).Delete(ctx)
}

func (b *SupabaseBackend) ListOptions(ctx context.Context) ([]avatar.Option, error) {
	var opts []avatar.Option
	if err := b.sb.From(tableOptions).Select("id, category, option_value, price").Execute(ctx, &opts); err != nil {
		return nil, err
	}
	avatar.SortOptions(opts)
	return opts, nil
}

type ownedOptionRow struct {
	ID       int64           `json:"id"`
	Category avatar.Category `json:"category"`
	Value    string          `json:"option_value"`
	Price    int             `json:"price"`
	IsOwned  bool            `json:"isowned"`
}

func (b *SupabaseBackend) OptionsByCategoryWithOwnership(ctx context.Context, userID string, c avatar.Category) ([]avatar.Option, error) {
	var rows []ownedOptionRow
	err := b.sb.RPC(ctx, rpcOptionsByCategory, map[string]any{
		"category_param": c,
		"user_id_param":  userID,
	}, &rows)
	if err != nil {
		return nil, err
	}

	opts := make([]avatar.Option, 0, len(rows))
	for _, r := range rows {
		opts = append(opts, avatar.Option{ID: r.ID, Category: r.Category, Value: r.Value, Price: r.Price, Owned: r.IsOwned})
	}
	avatar.SortOptions(opts)
	return opts, nil
}

// ActiveOptions returns the options currently equipped on the user's avatar.
func (b *SupabaseBackend) ActiveOptions(ctx context.Context, userID string) ([]avatar.Option, error) {
	var rows []struct {
		Option *avatar.Option `json:"customization_options"`
	}
	err := b.sb.From(tableOwnership).Select("customization_options(id, category, option_value, price)").
		Eq("user_id", userID).Eq("is_active", true).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	opts := make([]avatar.Option, 0, len(rows))
	for _, r := range rows {
		if r.Option == nil {
			continue
		}
		o := *r.Option
		o.Owned = true
		opts = append(opts, o)
	}
	avatar.SortOptions(opts)
	return opts, nil
}

func (b *SupabaseBackend) InsertOwnership(ctx context.Context, userID string, optionIDs []int64, active bool) error {
	if len(optionIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(optionIDs))
	for _, id := range optionIDs {
		rows = append(rows, map[string]any{"user_id": userID, "customization_id": id, "is_active": active})
	}
	return b.sb.From(tableOwnership).Insert(ctx, rows, nil)
}

type cartItem struct {
	CustomizationID int64 `json:"customization_id"`
	IsActive        bool  `json:"is_active"`
}

// PurchaseOptions buys cart in one backend transaction: the balance is
// debited and ownership rows are added inactive.
func (b *SupabaseBackend) PurchaseOptions(ctx context.Context, userID string, cart []avatar.Option) error {
	items := make([]cartItem, 0, len(cart))
	total := 0
	for _, o := range cart {
		items = append(items, cartItem{CustomizationID: o.ID})
		total += o.Price
	}
	return b.sb.RPC(ctx, rpcPurchase, map[string]any{
		"user_id_param": userID,
		"total_price":   total,
		"cart_items":    items,
	}, nil)
}

func (b *SupabaseBackend) UpdateAvatarOptions(ctx context.Context, userID string, ch avatar.Changes) error {
	deactivate, activate := ch.Deactivate, ch.Activate
	if deactivate == nil {
		deactivate = []int64{}
	}
	if activate == nil {
		activate = []int64{}
	}
	return b.sb.RPC(ctx, rpcUpdateAvatar, map[string]any{
		"deactivate_ids": deactivate,
		"activate_ids":   activate,
		"user_id_param":  userID,
	}, nil)
}

func (b *SupabaseBackend) ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := b.sb.From(tableJournal).Select("*").Eq("user_id", userID).
		Order("entry_date", false).Order("id", false).Execute(ctx, &entries)
	return entries, err
}

func (b *SupabaseBackend) AddJournal(ctx context.Context, userID, content string, date models.Date) (models.JournalEntry, error) {
	entry := models.JournalEntry{UserID: userID, Content: content, EntryDate: date}
	row := map[string]any{"user_id": userID, "content": content, "entry_date": date}

	var created []models.JournalEntry
	if err := b.sb.From(tableJournal).Select("*").Insert(ctx, []map[string]any{row}, &created); err != nil {
		return models.JournalEntry{}, err
	}
	if len(created) > 0 {
		entry = created[0]
	}
	return entry, nil
}

func (b *SupabaseBackend) WatchMeters(ctx context.Context, userID string, fn func(game.Meters)) error {
	return b.watch(ctx, tableMeters, "user_id=eq."+userID, func(c supabase.Change) {
		var m game.Meters
		if err := c.Decode(&m); err != nil {
			b.log.Warn(ctx, "bad meters change", "error", err)
			return
		}
		fn(m)
	})
}

func (b *SupabaseBackend) WatchProfile(ctx context.Context, userID string, fn func(models.Profile)) error {
	return b.watch(ctx, tableUsers, "id=eq."+userID, func(c supabase.Change) {
		var p models.Profile
		if err := c.Decode(&p); err != nil {
			b.log.Warn(ctx, "bad profile change", "error", err)
			return
		}
		fn(p)
	})
}

func (b *SupabaseBackend) watch(ctx context.Context, table, filter string, h supabase.Handler) error {
	rt := b.sb.Realtime()
	defer rt.Close()

	if _, err := rt.Subscribe(ctx, supabase.PostgresChange{
		Event:  "UPDATE",
		Schema: "public",
		Table:  table,
		Filter: filter,
	}, h); err != nil {
		return fmt.Errorf("watch %s: %w", table, err)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-rt.Done():
		return fmt.Errorf("watch %s: %w", table, common.ErrUnavailable)
	}
}
