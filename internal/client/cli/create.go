package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

const helpCreate = "Create commands: next, prev, name <avatar name>, save, back"

// CreateCharacter lets the user flip through the seeded starting characters,
// name one and save it as their buddy.
func (a *App) CreateCharacter(ctx context.Context) error {
	idx := 0
	name := ""

	cfg, err := a.showCharacter(ctx, idx)
	if err != nil {
		return err
	}
	a.println(helpCreate)

	for {
		a.printf("create (%s)> ", avatar.Seeds[idx])
		line, err := readLine(a.reader)
		if err != nil {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "next", "prev":
			if cmd == "next" {
				idx = avatar.NextSeed(idx)
			} else {
				idx = avatar.PrevSeed(idx)
			}
			next, err := a.showCharacter(ctx, idx)
			if err != nil {
				a.println(userMessage(err))
				continue
			}
			cfg = next

		case "name":
			name = strings.TrimSpace(strings.Join(parts[1:], " "))
			if name == "" {
				a.println(userMessage(common.ErrAvatarNameEmpty))
				continue
			}
			a.println("Name set to", name)

		case "save":
			rctx, cancel := a.withTimeout(ctx)
			err := a.shopService.CreateCharacter(rctx, name, cfg)
			cancel()
			if err != nil {
				a.println(userMessage(err))
				continue
			}
			a.println(fmt.Sprintf("%s is ready! Type 'dashboard' to see your buddy.", name))
			return nil

		case "back", "exit", "quit":
			return nil

		case "help":
			a.println(helpCreate)

		default:
			a.println("Unknown command:", parts[0])
		}
	}
}

func (a *App) showCharacter(ctx context.Context, idx int) (avatar.Config, error) {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	cfg, url, err := a.shopService.GenerateCharacter(rctx, avatar.Seeds[idx])
	if err != nil {
		return nil, err
	}
	a.println(fmt.Sprintf("Character %d/%d: %s", idx+1, len(avatar.Seeds), avatar.Seeds[idx]))
	a.println(url)
	return cfg, nil
}
