package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway refreshes a little before the token actually expires.
const expiryLeeway = 10 * time.Second

// Session is a signed-in GoTrue session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt.Add(-expiryLeeway))
}

// User is the GoTrue user record.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// signUpResponse is a session when the project auto-confirms users, or the
// bare user when an email confirmation is pending.
type signUpResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignUpResult carries the new user and, when no email confirmation is
// required, the session it was signed in with.
type SignUpResult struct {
	User    User
	Session *Session
}

// Auth wraps the GoTrue endpoints.
type Auth struct {
	client *Client
}

func (c *Client) Auth() *Auth {
	return &Auth{client: c}
}

// SignUp registers a user. data lands in the user's metadata.
func (a *Auth) SignUp(ctx context.Context, email, password string, data map[string]any) (*SignUpResult, error) {
	body := map[string]any{"email": email, "password": password}
	if len(data) > 0 {
		body["data"] = data
	}

	resp, err := a.client.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   body,
		public: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	var sr signUpResponse
	if err := resp.JSON(&sr); err != nil {
		return nil, fmt.Errorf("sign up: decode: %w", err)
	}

	res := &SignUpResult{User: User{ID: sr.ID, Email: sr.Email}}
	if sr.User != nil {
		res.User = *sr.User
	}
	if sr.AccessToken == "" {
		return res, nil
	}

	s, err := a.client.sessionFrom(sr.tokenResponse)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	a.client.SetSession(s)
	res.Session = s
	return res, nil
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	s, err := a.token(ctx, "password", map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s, nil
}

// RefreshSession trades a refresh token for a new session.
func (a *Auth) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	s, err := a.token(ctx, "refresh_token", map[string]any{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return s, nil
}

func (a *Auth) token(ctx context.Context, grant string, body map[string]any) (*Session, error) {
	resp, err := a.client.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {grant}},
		body:   body,
		public: true,
	})
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := resp.JSON(&tr); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	s, err := a.client.sessionFrom(tr)
	if err != nil {
		return nil, err
	}
	a.client.SetSession(s)
	return s, nil
}

// SignOut revokes the session on the server and forgets it locally. The
// local session is dropped even if the server call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	s := a.client.Session()
	if s == nil {
		return nil
	}
	defer a.client.SetSession(nil)

	_, err := a.client.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		header: http.Header{"Authorization": {"Bearer " + s.AccessToken}},
		public: true,
	})
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Health checks that the auth service answers.
func (a *Auth) Health(ctx context.Context) error {
	if _, err := a.client.send(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/health",
		public: true,
	}); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// sessionFrom builds a Session from a token response. Claims are read
// unverified.
func (c *Client) sessionFrom(tr tokenResponse) (*Session, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	s := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       claims.Subject,
		Email:        claims.Email,
	}

	switch {
	case claims.ExpiresAt != nil:
		s.ExpiresAt = claims.ExpiresAt.Time
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if tr.User != nil {
		if s.UserID == "" {
			s.UserID = tr.User.ID
		}
		if s.Email == "" {
			s.Email = tr.User.Email
		}
	}
	return s, nil
}
