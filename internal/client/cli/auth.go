package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Register prompts for email, full name and the password twice, then creates
// the account. When the project requires email confirmation the user is told
// to confirm first.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	reg, err := a.authService.Register(rctx, email, fullName, password, confirm)
	if err != nil {
		return err
	}

	if !reg.SignedIn {
		a.println("Account created! Please check your email to confirm your account.")
		return nil
	}
	a.setUser(email, true)
	a.println("Account created! Type 'create' to make your buddy.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.authService.Login(rctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setUser(s.Email, true)
	a.setMode(ModeOnline)
	a.println("Login successful")
	a.suggestCreation(ctx)
	return nil
}

// Logout signs out and wipes the local cache.
func (a *App) Logout(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Logout(rctx); err != nil {
		return err
	}
	a.setUser("", false)
	a.println("Logged out")
	return nil
}

// suggestCreation points new users without an avatar to the creator.
func (a *App) suggestCreation(ctx context.Context) {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	d, err := a.buddyService.Dashboard(rctx)
	if err != nil {
		a.log.Debug(ctx, "dashboard after login", "error", err)
		return
	}
	if !d.Profile.HasAvatar() {
		a.println("You have no buddy yet. Type 'create' to make one.")
	}
}
