package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
)

const barWidth = 20

// Dashboard prints the buddy: name, coins, the four meters and the avatar
// image URL.
func (a *App) Dashboard(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	d, err := a.buddyService.Dashboard(rctx)
	if err != nil {
		return err
	}
	a.println(formatDashboard(d))
	return nil
}

func formatDashboard(d models.Dashboard) string {
	var b strings.Builder

	if d.Offline {
		fmt.Fprintf(&b, "(offline, as of %s)\n", d.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	name := d.Profile.AvatarName
	if name == "" {
		name = "(no buddy yet, type 'create')"
	}
	fmt.Fprintf(&b, "Buddy:  %s\n", name)
	fmt.Fprintf(&b, "Owner:  %s\n", d.Profile.FullName)
	fmt.Fprintf(&b, "Coins:  %d\n", d.Profile.CoinBalance)
	b.WriteString(formatMeters(d.Meters))
	if d.AvatarURL != "" {
		fmt.Fprintf(&b, "Avatar: %s", d.AvatarURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMeters(m game.Meters) string {
	var b strings.Builder
	for _, c := range game.Categories {
		v := m.Get(c)
		// Server values outside the meter range still render a bar.
		filled := game.ClampMeter(v) * barWidth / game.MeterMax
		fmt.Fprintf(&b, "%-18s [%s%s] %3d\n", c.DisplayName(),
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), v)
	}
	return b.String()
}

// Watch streams meter and coin updates until the user presses Enter.
func (a *App) Watch(ctx context.Context) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 2)
	go func() {
		done <- a.buddyService.WatchMeters(wctx, func(m game.Meters) {
			a.println("Meters updated:")
			a.printf("%s", formatMeters(m))
		})
	}()
	go func() {
		done <- a.buddyService.WatchCoins(wctx, func(coins int) {
			a.println("Coins:", coins)
		})
	}()

	a.println("Watching for updates, press Enter to stop.")
	_, _ = readLine(a.reader)
	cancel()

	var firstErr error
	for range 2 {
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
