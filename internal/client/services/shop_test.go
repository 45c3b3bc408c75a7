package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
	"github.com/dmitrijs2005/balancebuddy/internal/seed"
)

var (
	kurt     = avatar.Option{ID: 1, Category: avatar.Accessories, Value: "kurt", Price: 10}
	round    = avatar.Option{ID: 2, Category: avatar.Accessories, Value: "round", Price: 10}
	happy    = avatar.Option{ID: 3, Category: avatar.Eyes, Value: "happy", Price: 10}
	defEyes  = avatar.Option{ID: 4, Category: avatar.Eyes, Value: "default", Price: 10}
	catalog4 = []avatar.Option{kurt, round, happy, defEyes}
)

func noWait() retry.Backoff {
	return retry.WithMaxRetries(purchaseRetries, retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	}))
}

type shopFixture struct {
	svc     *shopService
	backend *fakeBackend
	catalog catalog.Repository
	clock   time.Time
}

func newShop(t *testing.T) *shopFixture {
	t.Helper()
	fb := newFakeBackend()
	fb.Options = catalog4
	fb.Active = []avatar.Option{kurt, defEyes}

	f := &shopFixture{backend: fb, catalog: setupRepos(t).Catalog, clock: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	svc := NewShopService(fb, f.catalog, &fakeRenderer{}, time.Hour, logging.Nop()).(*shopService)
	svc.newBackoff = noWait
	svc.now = func() time.Time { return f.clock }
	f.svc = svc
	return f
}

func owned(o avatar.Option) avatar.Option {
	o.Owned = true
	return o
}

func TestLoadEditor_ActiveOptionsAreOwned(t *testing.T) {
	f := newShop(t)

	st, err := f.svc.LoadEditor(context.Background())
	require.NoError(t, err)

	assert.Equal(t, avatar.Accessories, st.SelectedCategory)
	assert.Equal(t, []avatar.Option{owned(kurt), owned(defEyes)}, st.Original)
	assert.Equal(t, st.Original, st.Selected)
	assert.Empty(t, avatar.Cart(st))
}

func TestSaveChanges_PurchasesThenEquips(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})

	st, msg, err := f.svc.SaveChanges(ctx, st)
	require.NoError(t, err)

	assert.Equal(t, MsgPurchasedSaved, msg)
	assert.Equal(t, []string{"purchase", "update_avatar"}, f.backend.Calls)
	assert.Equal(t, []avatar.Option{round}, f.backend.LastPurchase)
	assert.Equal(t, avatar.Changes{Deactivate: []int64{1}, Activate: []int64{2}}, f.backend.LastChanges)
	assert.Equal(t, 40, f.backend.Profile.CoinBalance)

	assert.False(t, avatar.HasUnsavedChanges(st))
	assert.Empty(t, avatar.Cart(st))
	assert.False(t, st.ShowPurchaseModal)
}

func TestSaveChanges_OwnedSwapOnlyEquips(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: owned(happy)})

	_, msg, err := f.svc.SaveChanges(ctx, st)
	require.NoError(t, err)

	assert.Equal(t, MsgSaved, msg)
	assert.Equal(t, []string{"update_avatar"}, f.backend.Calls)
	assert.Equal(t, avatar.Changes{Deactivate: []int64{4}, Activate: []int64{3}}, f.backend.LastChanges)
}

func TestSaveChanges_NothingToDo(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)

	_, msg, err := f.svc.SaveChanges(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, MsgSaved, msg)
	assert.Empty(t, f.backend.Calls)
}

func TestSaveChanges_InsufficientCoinsWritesNothing(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.Profile.CoinBalance = 5

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})

	after, _, err := f.svc.SaveChanges(ctx, st)
	require.ErrorIs(t, err, common.ErrInsufficientCoins)
	assert.Empty(t, f.backend.Calls)
	assert.Equal(t, st, after)
}

func TestSaveChanges_RetriesUnavailablePurchase(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.PurchaseErrs = []error{common.ErrUnavailable, nil}

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})

	_, msg, err := f.svc.SaveChanges(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, MsgPurchasedSaved, msg)
	assert.Equal(t, 2, f.backend.PurchaseCalls)
}

func TestSaveChanges_GivesUpAfterTwoRetries(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.PurchaseErrs = []error{common.ErrUnavailable, common.ErrUnavailable, common.ErrUnavailable, nil}

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})

	_, _, err = f.svc.SaveChanges(ctx, st)
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, 3, f.backend.PurchaseCalls)
	assert.NotContains(t, f.backend.Calls, "update_avatar")
}

func TestSaveChanges_DoesNotRetryRejectedPurchase(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.PurchaseErrs = []error{common.ErrInsufficientCoins}

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})

	_, _, err = f.svc.SaveChanges(ctx, st)
	require.ErrorIs(t, err, common.ErrInsufficientCoins)
	assert.Equal(t, 1, f.backend.PurchaseCalls)
}

func TestPurchaseOne_MarksOwned(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: happy})

	st, err = f.svc.PurchaseOne(ctx, st, happy)
	require.NoError(t, err)

	eq, ok := avatar.Equipped(st, avatar.Eyes)
	require.True(t, ok)
	assert.True(t, eq.Owned)
	assert.Empty(t, avatar.Cart(st))
	assert.True(t, avatar.HasUnsavedChanges(st), "equip is still pending")
	assert.Equal(t, 40, f.backend.Profile.CoinBalance)
}

func TestPurchaseOne_OwnedIsNoop(t *testing.T) {
	f := newShop(t)

	st, err := f.svc.PurchaseOne(context.Background(), avatar.NewState(), owned(happy))
	require.NoError(t, err)
	assert.Equal(t, avatar.NewState(), st)
	assert.Zero(t, f.backend.PurchaseCalls)
}

func TestPurchaseOne_InsufficientCoins(t *testing.T) {
	f := newShop(t)
	f.backend.Profile.CoinBalance = 9

	_, err := f.svc.PurchaseOne(context.Background(), avatar.NewState(), happy)
	require.ErrorIs(t, err, common.ErrInsufficientCoins)
	assert.Zero(t, f.backend.PurchaseCalls)
}

func TestSaveChanges_SkipsOptionsOwnedOnServer(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.Options = []avatar.Option{kurt, owned(round), happy, defEyes}

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	// Picked from the offline cache, so ownership reads as false.
	st = avatar.Reduce(st, avatar.Equip{Option: round})
	require.Len(t, avatar.Cart(st), 1)

	st, msg, err := f.svc.SaveChanges(ctx, st)
	require.NoError(t, err)

	assert.Equal(t, MsgSaved, msg)
	assert.Zero(t, f.backend.PurchaseCalls)
	assert.Equal(t, []string{"update_avatar"}, f.backend.Calls)
	assert.Equal(t, avatar.Changes{Deactivate: []int64{1}, Activate: []int64{2}}, f.backend.LastChanges)
	assert.Equal(t, 50, f.backend.Profile.CoinBalance)
	assert.Empty(t, avatar.Cart(st))
}

func TestSaveChanges_OwnershipCheckOfflineBuysNothing(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: round})
	f.backend.CategoryErr = common.ErrUnavailable

	after, _, err := f.svc.SaveChanges(ctx, st)
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Zero(t, f.backend.PurchaseCalls)
	assert.Empty(t, f.backend.Calls)
	assert.Equal(t, st, after)
}

func TestPurchaseOne_OwnedOnServerIsNotBought(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.Options = []avatar.Option{kurt, round, owned(happy), defEyes}

	st, err := f.svc.LoadEditor(ctx)
	require.NoError(t, err)
	st = avatar.Reduce(st, avatar.Equip{Option: happy})

	st, err = f.svc.PurchaseOne(ctx, st, happy)
	require.NoError(t, err)

	assert.Zero(t, f.backend.PurchaseCalls)
	assert.Equal(t, 50, f.backend.Profile.CoinBalance)
	eq, ok := avatar.Equipped(st, avatar.Eyes)
	require.True(t, ok)
	assert.True(t, eq.Owned)
	assert.Empty(t, avatar.Cart(st))
}

func TestCategoryOptions(t *testing.T) {
	f := newShop(t)

	opts, err := f.svc.CategoryOptions(context.Background(), avatar.Eyes)
	require.NoError(t, err)
	assert.Equal(t, []avatar.Option{happy, defEyes}, opts)

	_, err = f.svc.CategoryOptions(context.Background(), avatar.Category("wings"))
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCategoryOptions_OfflineFromCache(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()
	f.backend.CategoryErr = common.ErrUnavailable

	_, err := f.svc.CategoryOptions(ctx, avatar.Eyes)
	require.ErrorIs(t, err, common.ErrUnavailable)

	_, err = f.svc.Catalog(ctx)
	require.NoError(t, err)

	opts, err := f.svc.CategoryOptions(ctx, avatar.Eyes)
	require.NoError(t, err)
	assert.ElementsMatch(t, []avatar.Option{happy, defEyes}, opts)
}

func TestCatalog_CachedWithinTTL(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	first, err := f.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 4)
	assert.Equal(t, 1, f.backend.ListOptionsCalls)

	f.clock = f.clock.Add(30 * time.Minute)
	second, err := f.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
	assert.Equal(t, 1, f.backend.ListOptionsCalls)

	f.clock = f.clock.Add(time.Hour)
	_, err = f.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.backend.ListOptionsCalls)
}

func TestCatalog_StaleServedWhenOffline(t *testing.T) {
	f := newShop(t)
	ctx := context.Background()

	_, err := f.svc.Catalog(ctx)
	require.NoError(t, err)

	f.clock = f.clock.Add(2 * time.Hour)
	f.backend.ListOptionsErr = common.ErrUnavailable

	got, err := f.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestCatalog_OfflineWithoutCache(t *testing.T) {
	f := newShop(t)
	f.backend.ListOptionsErr = common.ErrUnavailable

	_, err := f.svc.Catalog(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestGenerateCharacter(t *testing.T) {
	f := newShop(t)
	r := f.svc.renderer.(*fakeRenderer)
	r.Generated = avatar.Config{avatar.Eyes: "happy"}

	cfg, url, err := f.svc.GenerateCharacter(context.Background(), avatar.Seeds[0])
	require.NoError(t, err)
	assert.Equal(t, avatar.Seeds[0], r.LastSeed)
	assert.Equal(t, avatar.Config{avatar.Eyes: "happy"}, cfg)
	assert.Equal(t, "https://avatars.test/svg?n=1", url)
}

func TestCreateCharacter_MapsConfigToCatalogIDs(t *testing.T) {
	f := newShop(t)
	cfg := avatar.Config{avatar.Accessories: "round", avatar.Eyes: "happy", avatar.Top: "unknown"}

	require.NoError(t, f.svc.CreateCharacter(context.Background(), " Pip ", cfg))

	assert.Equal(t, []int64{2, 3}, f.backend.LastOwnershipIDs)
	assert.True(t, f.backend.LastOwnershipOn)
	assert.Equal(t, "Pip", f.backend.LastAvatarName)
	assert.Equal(t, []string{"ownership", "avatar_name"}, f.backend.Calls)
}

func TestCreateCharacter_MatchesSeededColors(t *testing.T) {
	f := newShop(t)
	dump := `{
	  "hairColor": {"type": "array", "items": {"type": "string"}, "default": ["a55728", "2c1b18"]},
	  "eyes": {"type": "array", "items": {"type": "string", "enum": ["happy", "default"]}}
	}`
	opts, err := seed.ParseOptionsDump(strings.NewReader(dump))
	require.NoError(t, err)
	for i := range opts {
		opts[i].ID = int64(100 + i)
	}
	f.backend.Options = opts

	byKey := map[string]int64{}
	for _, o := range opts {
		byKey[avatar.OptionKey(o.Category, o.Value)] = o.ID
	}

	// Generated configs carry '#'-prefixed colors.
	cfg := avatar.Config{avatar.HairColor: "#a55728", avatar.Eyes: "happy"}
	require.NoError(t, f.svc.CreateCharacter(context.Background(), "Pip", cfg))

	assert.ElementsMatch(t, []int64{
		byKey[avatar.OptionKey(avatar.HairColor, "a55728")],
		byKey[avatar.OptionKey(avatar.Eyes, "happy")],
	}, f.backend.LastOwnershipIDs)
	assert.Len(t, f.backend.LastOwnershipIDs, 2)
}

func TestCreateCharacter_NameRequired(t *testing.T) {
	f := newShop(t)

	err := f.svc.CreateCharacter(context.Background(), "   ", avatar.Config{avatar.Eyes: "happy"})
	require.ErrorIs(t, err, common.ErrAvatarNameEmpty)
	assert.Empty(t, f.backend.Calls)
}

func TestCreateCharacter_JoinsErrors(t *testing.T) {
	f := newShop(t)
	f.backend.InsertOwnErr = common.ErrConflict
	f.backend.UpdateNameErr = common.ErrUnauthorized

	err := f.svc.CreateCharacter(context.Background(), "Pip", avatar.Config{avatar.Eyes: "happy"})
	require.ErrorIs(t, err, common.ErrConflict)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
