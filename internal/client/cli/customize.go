package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
)

const helpCustomize = "Customize commands: categories, category <name>, options, equip <id>, cart, " +
	"remove <id>, discard, buy <id>, reset, preview, save, back"

// customizer is the state of one customize session.
type customizer struct {
	st      avatar.State
	options []avatar.Option
}

// Customize runs the avatar editor until "back". Picks are local until
// "save", which buys unowned picks and equips the working avatar.
func (a *App) Customize(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	st, err := a.shopService.LoadEditor(rctx)
	cancel()
	if err != nil {
		return err
	}

	c := &customizer{st: st}
	if err := a.loadCategory(ctx, c, st.SelectedCategory); err != nil {
		return err
	}
	a.println(helpCustomize)
	a.printOptions(c)

	for {
		a.printf("customize (%s)> ", c.st.SelectedCategory.Label())
		line, err := readLine(a.reader)
		if err != nil {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "back" || cmd == "exit" || cmd == "quit" {
			if avatar.HasUnsavedChanges(c.st) {
				ok, err := GetConfirm(a.reader, "You have unsaved changes. Leave anyway?", a.out)
				if err != nil {
					return nil
				}
				if !ok {
					continue
				}
			}
			return nil
		}

		if err := a.customizeStep(ctx, c, cmd, args); err != nil {
			a.println(userMessage(err))
		}
	}
}

func (a *App) customizeStep(ctx context.Context, c *customizer, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.println(helpCustomize)

	case "categories":
		for _, cat := range avatar.Categories {
			cur := "-"
			if o, ok := avatar.Equipped(c.st, cat); ok {
				cur = o.Value
			}
			a.println(fmt.Sprintf("%-18s %-20s %s", cat, cat.Label(), cur))
		}

	case "category":
		if len(args) == 0 {
			return fmt.Errorf("usage: category <name>")
		}
		cat, err := avatar.ParseCategory(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := a.loadCategory(ctx, c, cat); err != nil {
			return err
		}
		c.st = avatar.Reduce(c.st, avatar.ChangeCategory{Category: cat})
		a.printOptions(c)

	case "options":
		a.printOptions(c)

	case "equip":
		o, err := pick(c.options, args)
		if err != nil {
			return err
		}
		c.st = avatar.Reduce(c.st, avatar.Equip{Option: o})
		if o.Owned {
			a.println("Equipped", o.Value)
		} else {
			a.println(fmt.Sprintf("Equipped %s (not owned, %d coins)", o.Value, o.Price))
		}

	case "cart":
		a.printCart(c.st)

	case "remove":
		o, err := pick(avatar.Cart(c.st), args)
		if err != nil {
			return err
		}
		c.st = avatar.Reduce(c.st, avatar.RemoveUnowned{Option: o})
		a.printCart(c.st)

	case "discard":
		c.st = avatar.Reduce(c.st, avatar.DiscardAllUnowned{})
		a.println("Unowned picks discarded")

	case "buy":
		o, err := pick(avatar.Cart(c.st), args)
		if err != nil {
			return err
		}
		rctx, cancel := a.withTimeout(ctx)
		defer cancel()
		if c.st, err = a.shopService.PurchaseOne(rctx, c.st, o); err != nil {
			return err
		}
		markOwned(c.options, o.ID)
		a.println(fmt.Sprintf("Bought %s for %d coins", o.Value, o.Price))

	case "reset":
		c.st = avatar.Reduce(c.st, avatar.Reset{})
		a.println("Changes reset")

	case "preview":
		a.println(a.shopService.Preview(c.st))

	case "save":
		return a.saveAvatar(ctx, c)

	default:
		a.println("Unknown command:", cmd)
	}
	return nil
}

// saveAvatar asks for confirmation when there is something to buy, then
// saves.
func (a *App) saveAvatar(ctx context.Context, c *customizer) error {
	if len(avatar.Cart(c.st)) > 0 {
		c.st = avatar.Reduce(c.st, avatar.TogglePurchaseModal{})
		a.printCart(c.st)
		ok, err := GetConfirm(a.reader, fmt.Sprintf("Buy for %d coins and save?", avatar.CartTotal(c.st)), a.out)
		if err != nil || !ok {
			c.st = avatar.Reduce(c.st, avatar.TogglePurchaseModal{})
			return err
		}
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, msg, err := a.shopService.SaveChanges(rctx, c.st)
	if err != nil {
		if c.st.ShowPurchaseModal {
			c.st = avatar.Reduce(c.st, avatar.TogglePurchaseModal{})
		}
		return err
	}
	c.st = st
	for _, o := range c.st.Selected {
		markOwned(c.options, o.ID)
	}
	a.println(msg)
	return nil
}

func (a *App) loadCategory(ctx context.Context, c *customizer, cat avatar.Category) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	opts, err := a.shopService.CategoryOptions(rctx, cat)
	if err != nil {
		return err
	}
	c.options = opts
	return nil
}

func (a *App) printOptions(c *customizer) {
	equipped, _ := avatar.Equipped(c.st, c.st.SelectedCategory)
	a.println(c.st.SelectedCategory.Label() + ":")
	for _, o := range c.options {
		mark := " "
		if o.ID == equipped.ID {
			mark = "*"
		}
		price := "owned"
		if !o.Owned {
			price = fmt.Sprintf("%d coins", o.Price)
		}
		a.println(fmt.Sprintf("%s %5d  %-24s %s", mark, o.ID, o.Value, price))
	}
}

func (a *App) printCart(st avatar.State) {
	cart := avatar.Cart(st)
	if len(cart) == 0 {
		a.println("Cart is empty.")
		return
	}
	for _, o := range cart {
		a.println(fmt.Sprintf("%5d  %-18s %-24s %d coins", o.ID, o.Category.Label(), o.Value, o.Price))
	}
	a.println(fmt.Sprintf("Total: %d coins", avatar.CartTotal(st)))
}

func pick(options []avatar.Option, args []string) (avatar.Option, error) {
	id, err := parseID(args)
	if err != nil {
		return avatar.Option{}, err
	}
	for _, o := range options {
		if o.ID == id {
			return o, nil
		}
	}
	return avatar.Option{}, fmt.Errorf("no option %d here", id)
}

func markOwned(options []avatar.Option, id int64) {
	for i := range options {
		if options[i].ID == id {
			options[i].Owned = true
		}
	}
}
