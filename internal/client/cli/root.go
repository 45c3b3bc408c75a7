package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

// Run resumes the saved session if there is one, starts the online watcher
// and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to Balance Buddy (type 'help' for commands)")
	a.restore(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) restore(ctx context.Context) {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.authService.Restore(rctx)
	switch {
	case err == nil:
		a.setUser(s.Email, true)
		a.setMode(ModeOnline)
		a.println("Welcome back,", s.Email)
		a.suggestCreation(ctx)

	case errors.Is(err, common.ErrUnavailable):
		email, lerr := a.authService.LastEmail(ctx)
		if lerr != nil {
			a.log.Warn(ctx, "read cached email", "error", lerr)
		}
		a.setUser(email, true)
		a.setMode(ModeOffline)
		a.println("Backend unavailable, showing cached data. Type 'dashboard' to see your buddy.")

	case errors.Is(err, common.ErrNoLocalData):
		a.setMode(ModeOnline)
		a.println("Type 'login' or 'register' to start.")

	default:
		a.log.Debug(ctx, "session not restored", "error", err)
		a.setMode(ModeOnline)
		a.println("Your session has expired. Type 'login' to sign in again.")
	}
}
