// Package services contains the application services of the Balance Buddy
// client. This file defines the authentication service: registration, login,
// session restore on start, logout, and the liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

const MinPasswordLength = 6

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create the account and its users row; passwords must match.
//   - Login: sign in and persist the session for the next start.
//   - Restore: resume the persisted session.
//   - Logout: sign out remotely and wipe local data.
//   - Ping: check backend liveness.
//   - LastEmail: the email of the persisted session, for the offline prompt.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, email, fullName string, password, confirm []byte) (client.Registration, error)
	Login(ctx context.Context, email string, password []byte) (*client.Session, error)
	Restore(ctx context.Context) (*client.Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	LastEmail(ctx context.Context) (string, error)
}

type authService struct {
	backend client.Backend
	meta    metadata.Repository
	log     logging.Logger
}

// NewAuthService constructs an AuthService. Every session the backend issues
// or rotates from now on is written to meta.
func NewAuthService(backend client.Backend, meta metadata.Repository, log logging.Logger) AuthService {
	a := &authService{backend: backend, meta: meta, log: log}
	backend.OnSessionChange(a.persist)
	return a
}

// Register validates the form, signs up and inserts the profile row. When
// the profile insert fails the account still exists; the returned error says
// so.
func (a *authService) Register(ctx context.Context, email, fullName string, password, confirm []byte) (client.Registration, error) {
	defer common.WipeByteArray(password)
	defer common.WipeByteArray(confirm)

	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" || fullName == "" {
		return client.Registration{}, fmt.Errorf("%w: email and full name are required", common.ErrInvalidInput)
	}
	if string(password) != string(confirm) {
		return client.Registration{}, common.ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return client.Registration{}, fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, MinPasswordLength)
	}

	reg, err := a.backend.SignUp(ctx, email, string(password), fullName)
	if err != nil {
		return client.Registration{}, fmt.Errorf("sign up: %w", err)
	}

	if err := a.backend.InsertProfile(ctx, models.Profile{ID: reg.UserID, FullName: fullName}); err != nil {
		a.log.Warn(ctx, "profile insert failed", "user_id", reg.UserID, "error", err)
		return reg, fmt.Errorf("%w: %w", ErrProfileNotSaved, err)
	}

	return reg, nil
}

// ErrProfileNotSaved means the account was created but its users row was not.
var ErrProfileNotSaved = errors.New("account created, but additional data failed to save")

func (a *authService) Login(ctx context.Context, email string, password []byte) (*client.Session, error) {
	defer common.WipeByteArray(password)

	s, err := a.backend.SignIn(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s, nil
}

// Restore resumes the session persisted by an earlier run. It returns
// common.ErrNoLocalData when nothing is stored and common.ErrNotLoggedIn when
// the stored refresh token was rejected (local data is wiped in that case).
// Transport failures are returned as is so the caller can go offline.
func (a *authService) Restore(ctx context.Context) (*client.Session, error) {
	token, err := metadata.GetString(ctx, a.meta, metadata.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if token == "" {
		return nil, common.ErrNoLocalData
	}

	s, err := a.backend.Restore(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			return nil, err
		}
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrInvalidInput) {
			if cerr := a.meta.Clear(ctx); cerr != nil {
				a.log.Warn(ctx, "clear local data", "error", cerr)
			}
			return nil, fmt.Errorf("%w: %w", common.ErrNotLoggedIn, err)
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return s, nil
}

// Logout always wipes local data; a failed remote sign out is only logged.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.backend.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "remote sign out failed", "error", err)
	}
	if err := a.meta.Clear(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.backend.Ping(ctx)
}

func (a *authService) LastEmail(ctx context.Context) (string, error) {
	return metadata.GetString(ctx, a.meta, metadata.KeyEmail)
}

func (a *authService) persist(s *client.Session) {
	ctx := context.Background()

	if s == nil {
		if err := a.meta.Delete(ctx, metadata.KeyRefreshToken); err != nil {
			a.log.Warn(ctx, "forget refresh token", "error", err)
		}
		return
	}

	err := a.meta.SetMany(ctx, map[string][]byte{
		metadata.KeyRefreshToken: []byte(s.RefreshToken),
		metadata.KeyUserID:       []byte(s.UserID),
		metadata.KeyEmail:        []byte(s.Email),
	})
	if err != nil {
		a.log.Warn(ctx, "persist session", "error", err)
	}
}
