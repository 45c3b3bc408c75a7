package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
)

// Journal lists entries, or with "add" writes a new one.
func (a *App) Journal(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "add" {
		return a.addJournal(ctx)
	}
	if len(args) > 0 {
		return fmt.Errorf("usage: journal [add]")
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	entries, err := a.journalService.List(rctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.println("Journal is empty.")
		return nil
	}
	for _, e := range entries {
		a.println(fmt.Sprintf("%s  %s", e.EntryDate, e.Content))
	}
	return nil
}

func (a *App) addJournal(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "How was your day?", a.out)
	if err != nil {
		return err
	}
	dateStr, err := GetDefaultText(a.reader, "Date (YYYY-MM-DD)", models.Today().String(), a.out)
	if err != nil {
		return err
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if _, err := a.journalService.Add(rctx, content, date); err != nil {
		return err
	}
	a.println("Entry saved")
	return nil
}
