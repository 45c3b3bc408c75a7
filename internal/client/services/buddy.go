package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

// AvatarRenderer turns an avatar configuration into an image URL and picks
// configurations for the seeded starting characters.
type AvatarRenderer interface {
	URL(cfg avatar.Config) string
	Generate(ctx context.Context, seed string) (avatar.Config, error)
}

// BuddyService feeds the dashboard: profile, meters and the equipped avatar,
// plus realtime updates of meters and coins.
type BuddyService interface {
	// Dashboard fetches the current state. When the backend is unreachable
	// it returns the last cached snapshot with Offline set, or
	// common.ErrNoLocalData when there is none.
	Dashboard(ctx context.Context) (models.Dashboard, error)
	WatchMeters(ctx context.Context, fn func(game.Meters)) error
	WatchCoins(ctx context.Context, fn func(int)) error
}

type buddyService struct {
	backend  client.Backend
	meta     metadata.Repository
	renderer AvatarRenderer
	log      logging.Logger
	now      func() time.Time
}

func NewBuddyService(backend client.Backend, meta metadata.Repository, renderer AvatarRenderer, log logging.Logger) BuddyService {
	return &buddyService{backend: backend, meta: meta, renderer: renderer, log: log, now: time.Now}
}

func (s *buddyService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return s.cached(ctx, err)
	}

	d, err := s.fetch(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			return s.cached(ctx, err)
		}
		return models.Dashboard{}, err
	}

	if err := metadata.SetJSON(ctx, s.meta, metadata.KeyDashboard, d); err != nil {
		s.log.Warn(ctx, "cache dashboard", "error", err)
	}
	return d, nil
}

func (s *buddyService) fetch(ctx context.Context, userID string) (models.Dashboard, error) {
	profile, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("get profile: %w", err)
	}
	meters, err := s.backend.GetMeters(ctx, userID)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("get meters: %w", err)
	}
	active, err := s.backend.ActiveOptions(ctx, userID)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("get avatar: %w", err)
	}
	avatar.SortOptions(active)

	return models.Dashboard{
		Profile:   profile,
		Meters:    meters,
		Avatar:    active,
		AvatarURL: s.renderer.URL(avatar.ConfigOf(active)),
		FetchedAt: s.now().UTC(),
	}, nil
}

// cached returns the snapshot, or cause when there is none to show.
func (s *buddyService) cached(ctx context.Context, cause error) (models.Dashboard, error) {
	var d models.Dashboard
	ok, err := metadata.GetJSON(ctx, s.meta, metadata.KeyDashboard, &d)
	if err != nil {
		return models.Dashboard{}, err
	}
	if !ok {
		if errors.Is(cause, common.ErrUnavailable) {
			return models.Dashboard{}, fmt.Errorf("%w: %w", common.ErrNoLocalData, cause)
		}
		return models.Dashboard{}, cause
	}
	s.log.Debug(ctx, "serving cached dashboard", "fetched_at", d.FetchedAt, "reason", cause)
	d.Offline = true
	return d, nil
}

func (s *buddyService) WatchMeters(ctx context.Context, fn func(game.Meters)) error {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return err
	}
	return s.backend.WatchMeters(ctx, userID, fn)
}

func (s *buddyService) WatchCoins(ctx context.Context, fn func(int)) error {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return err
	}
	return s.backend.WatchProfile(ctx, userID, func(p models.Profile) {
		fn(p.CoinBalance)
	})
}
