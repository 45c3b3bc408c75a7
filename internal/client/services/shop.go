package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

const (
	MsgSaved          = "Successfully saved changes"
	MsgPurchasedSaved = "Successfully purchased and saved changes"
)

// ShopService drives avatar customization and character creation.
//
// Contract:
//   - LoadEditor: editor state seeded with the equipped (owned) options.
//   - CategoryOptions: one category of the catalog with ownership flags.
//   - PurchaseOne: buy a single option; the balance is checked first.
//   - SaveChanges: buy the cart, then apply the equip diff.
//   - Catalog: the full catalog, served from the local cache while fresh.
//   - GenerateCharacter / CreateCharacter: the seeded starting avatars.
//
// Purchases and equip changes are retried when the backend is unreachable.
type ShopService interface {
	LoadEditor(ctx context.Context) (avatar.State, error)
	CategoryOptions(ctx context.Context, c avatar.Category) ([]avatar.Option, error)
	CoinBalance(ctx context.Context) (int, error)
	PurchaseOne(ctx context.Context, st avatar.State, o avatar.Option) (avatar.State, error)
	SaveChanges(ctx context.Context, st avatar.State) (avatar.State, string, error)
	Preview(st avatar.State) string
	Catalog(ctx context.Context) ([]avatar.Option, error)
	GenerateCharacter(ctx context.Context, seed string) (avatar.Config, string, error)
	CreateCharacter(ctx context.Context, name string, cfg avatar.Config) error
}

type shopService struct {
	backend    client.Backend
	catalog    catalog.Repository
	renderer   AvatarRenderer
	log        logging.Logger
	catalogTTL time.Duration
	now        func() time.Time
	newBackoff func() retry.Backoff
}

func NewShopService(backend client.Backend, cat catalog.Repository, renderer AvatarRenderer, catalogTTL time.Duration, log logging.Logger) ShopService {
	return &shopService{
		backend:    backend,
		catalog:    cat,
		renderer:   renderer,
		log:        log,
		catalogTTL: catalogTTL,
		now:        time.Now,
		newBackoff: purchaseBackoff,
	}
}

func (s *shopService) LoadEditor(ctx context.Context) (avatar.State, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return avatar.State{}, err
	}

	active, err := s.backend.ActiveOptions(ctx, userID)
	if err != nil {
		return avatar.State{}, fmt.Errorf("get avatar: %w", err)
	}
	for i := range active {
		active[i].Owned = true
	}
	avatar.SortOptions(active)

	return avatar.Reduce(avatar.NewState(), avatar.Load{Options: active}), nil
}

func (s *shopService) CategoryOptions(ctx context.Context, c avatar.Category) ([]avatar.Option, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: category %q", common.ErrInvalidInput, c)
	}
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return nil, err
	}

	opts, err := s.backend.OptionsByCategoryWithOwnership(ctx, userID, c)
	if err == nil {
		return opts, nil
	}
	if errors.Is(err, common.ErrUnavailable) {
		// ownership is unknown offline; purchases recheck it before buying
		cached, cerr := s.catalog.ListByCategory(ctx, c)
		if cerr == nil && len(cached) > 0 {
			s.log.Warn(ctx, "serving cached category", "category", c, "error", err)
			return cached, nil
		}
	}
	return nil, fmt.Errorf("get %s options: %w", c, err)
}

func (s *shopService) CoinBalance(ctx context.Context) (int, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return 0, err
	}
	p, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get coin balance: %w", err)
	}
	return p.CoinBalance, nil
}

func (s *shopService) afford(ctx context.Context, total int) error {
	balance, err := s.CoinBalance(ctx)
	if err != nil {
		return err
	}
	if balance < total {
		return fmt.Errorf("%w: need %d, have %d", common.ErrInsufficientCoins, total, balance)
	}
	return nil
}

func (s *shopService) purchase(ctx context.Context, cart []avatar.Option) error {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return err
	}
	err = withRetry(ctx, s.log, s.newBackoff, "purchase", func(ctx context.Context) error {
		return s.backend.PurchaseOptions(ctx, userID, cart)
	})
	if err != nil {
		return fmt.Errorf("purchase: %w", err)
	}
	return nil
}

// ownedIDs asks the backend which of the given options the user already
// owns. Options may come from the offline catalog cache, where ownership is
// unknown.
func (s *shopService) ownedIDs(ctx context.Context, options []avatar.Option) (map[int64]struct{}, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return nil, err
	}
	owned := make(map[int64]struct{})
	checked := make(map[avatar.Category]struct{})
	for _, o := range options {
		if _, ok := checked[o.Category]; ok {
			continue
		}
		checked[o.Category] = struct{}{}
		opts, err := s.backend.OptionsByCategoryWithOwnership(ctx, userID, o.Category)
		if err != nil {
			return nil, fmt.Errorf("check ownership: %w", err)
		}
		for _, c := range opts {
			if c.Owned {
				owned[c.ID] = struct{}{}
			}
		}
	}
	return owned, nil
}

func (s *shopService) PurchaseOne(ctx context.Context, st avatar.State, o avatar.Option) (avatar.State, error) {
	if o.Owned {
		return st, nil
	}
	owned, err := s.ownedIDs(ctx, []avatar.Option{o})
	if err != nil {
		return st, err
	}
	if _, ok := owned[o.ID]; ok {
		return avatar.Reduce(st, avatar.MarkPurchased{ID: o.ID}), nil
	}
	if err := s.afford(ctx, o.Price); err != nil {
		return st, err
	}
	if err := s.purchase(ctx, []avatar.Option{o}); err != nil {
		return st, err
	}
	return avatar.Reduce(st, avatar.MarkPurchased{ID: o.ID}), nil
}

// SaveChanges buys every pick the backend does not already report as owned,
// then deactivates and activates options so the equipped set matches the
// working avatar. The returned message tells whether anything was bought.
func (s *shopService) SaveChanges(ctx context.Context, st avatar.State) (avatar.State, string, error) {
	msg := MsgSaved

	if cart := avatar.Cart(st); len(cart) > 0 {
		owned, err := s.ownedIDs(ctx, cart)
		if err != nil {
			return st, "", err
		}
		for id := range owned {
			st = avatar.Reduce(st, avatar.MarkPurchased{ID: id})
		}
	}

	if cart := avatar.Cart(st); len(cart) > 0 {
		if err := s.afford(ctx, avatar.CartTotal(st)); err != nil {
			return st, "", err
		}
		if err := s.purchase(ctx, cart); err != nil {
			return st, "", err
		}
		for _, o := range cart {
			st = avatar.Reduce(st, avatar.MarkPurchased{ID: o.ID})
		}
		msg = MsgPurchasedSaved
	}

	if ch := avatar.Diff(st.Original, st.Selected); !ch.Empty() {
		userID, err := s.backend.CurrentUserID()
		if err != nil {
			return st, "", err
		}
		err = withRetry(ctx, s.log, s.newBackoff, "update avatar", func(ctx context.Context) error {
			return s.backend.UpdateAvatarOptions(ctx, userID, ch)
		})
		if err != nil {
			return st, "", fmt.Errorf("update avatar: %w", err)
		}
	}

	st = avatar.Reduce(st, avatar.AfterSave{})
	st.ShowPurchaseModal = false
	return st, msg, nil
}

func (s *shopService) Preview(st avatar.State) string {
	return s.renderer.URL(avatar.ConfigOf(st.Selected))
}

// Catalog returns the cached catalog while it is younger than the TTL and
// refetches otherwise. A stale cache is still served when the backend is
// unreachable.
func (s *shopService) Catalog(ctx context.Context) ([]avatar.Option, error) {
	fetchedAt, err := s.catalog.FetchedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog cache: %w", err)
	}

	if !fetchedAt.IsZero() && s.now().Sub(fetchedAt) < s.catalogTTL {
		cached, err := s.catalog.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("read catalog cache: %w", err)
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}

	remote, err := s.backend.ListOptions(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) && !fetchedAt.IsZero() {
			s.log.Warn(ctx, "serving stale catalog", "fetched_at", fetchedAt, "error", err)
			return s.catalog.List(ctx)
		}
		return nil, fmt.Errorf("get catalog: %w", err)
	}

	if err := s.catalog.ReplaceAll(ctx, remote, s.now()); err != nil {
		s.log.Warn(ctx, "cache catalog", "error", err)
	}
	avatar.SortOptions(remote)
	return remote, nil
}

// GenerateCharacter returns the configuration of a starting character and
// its image URL.
func (s *shopService) GenerateCharacter(ctx context.Context, seed string) (avatar.Config, string, error) {
	cfg, err := s.renderer.Generate(ctx, seed)
	if err != nil {
		return nil, "", fmt.Errorf("generate %s: %w", seed, err)
	}
	return cfg, s.renderer.URL(cfg), nil
}

// CreateCharacter gives the user the options of cfg, equipped, and names the
// avatar. Values the catalog does not know are skipped. Both writes are
// attempted; their errors are joined.
func (s *shopService) CreateCharacter(ctx context.Context, name string, cfg avatar.Config) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.ErrAvatarNameEmpty
	}
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return err
	}

	all, err := s.Catalog(ctx)
	if err != nil {
		return err
	}
	index := make(map[string]int64, len(all))
	for _, o := range all {
		index[avatar.OptionKey(o.Category, o.Value)] = o.ID
	}

	ids := make([]int64, 0, len(cfg))
	for _, c := range avatar.Categories {
		v, ok := cfg[c]
		if !ok {
			continue
		}
		id, ok := index[avatar.OptionKey(c, v)]
		if !ok {
			s.log.Warn(ctx, "option not in catalog", "category", c, "value", v)
			continue
		}
		ids = append(ids, id)
	}

	var errs []error
	if len(ids) > 0 {
		if err := s.backend.InsertOwnership(ctx, userID, ids, true); err != nil {
			errs = append(errs, fmt.Errorf("save avatar options: %w", err))
		}
	}
	if err := s.backend.UpdateAvatarName(ctx, userID, name); err != nil {
		errs = append(errs, fmt.Errorf("save avatar name: %w", err))
	}
	return errors.Join(errs...)
}
