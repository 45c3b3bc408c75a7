package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
)

// Tasks lists tasks, optionally filtered: tasks [all|completed|uncompleted].
func (a *App) Tasks(ctx context.Context, args []string) error {
	filter := models.FilterAll
	if len(args) > 0 {
		f, err := models.ParseTaskFilter(args[0])
		if err != nil {
			return err
		}
		filter = f
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tasks, err := a.taskService.List(rctx, filter)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		a.println("No tasks.")
		return nil
	}
	for _, t := range tasks {
		a.println(formatTask(t))
	}
	return nil
}

func formatTask(t models.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("%4d [%s] %-40s %-18s due %s  %s", t.ID, mark, t.Description,
		t.Category.DisplayName(), t.Due, strings.Repeat("*", t.Complexity))
}

// readDraft prompts for each task field, offering the values of def.
func (a *App) readDraft(def models.TaskDraft) (models.TaskDraft, error) {
	var d models.TaskDraft

	desc, err := GetDefaultText(a.reader, "Description", def.Description, a.out)
	if err != nil {
		return d, err
	}
	d.Description = desc

	names := make([]string, len(game.Categories))
	for i, c := range game.Categories {
		names[i] = string(c)
	}
	cat, err := GetDefaultText(a.reader, "Category ("+strings.Join(names, ", ")+")", string(def.Category), a.out)
	if err != nil {
		return d, err
	}
	if d.Category, err = game.ParseCategory(cat); err != nil {
		return d, err
	}

	dueDef := ""
	if !def.Due.IsZero() {
		dueDef = def.Due.String()
	}
	due, err := GetDefaultText(a.reader, "Due date (YYYY-MM-DD)", dueDef, a.out)
	if err != nil {
		return d, err
	}
	if d.Due, err = models.ParseDate(due); err != nil {
		return d, err
	}

	compDef := ""
	if def.Complexity > 0 {
		compDef = strconv.Itoa(def.Complexity)
	}
	comp, err := GetDefaultText(a.reader, fmt.Sprintf("Complexity (%d-%d)", game.MinComplexity, game.MaxComplexity), compDef, a.out)
	if err != nil {
		return d, err
	}
	if d.Complexity, err = strconv.Atoi(comp); err != nil {
		return d, fmt.Errorf("invalid complexity %q", comp)
	}
	return d, d.Validate()
}

func (a *App) AddTask(ctx context.Context) error {
	d, err := a.readDraft(models.TaskDraft{Complexity: 3, Due: models.Today()})
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t, err := a.taskService.Create(rctx, d)
	if err != nil {
		return err
	}
	a.println("Task added:", t.ID)
	return nil
}

func (a *App) EditTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	t, err := a.taskService.Get(rctx, id)
	cancel()
	if err != nil {
		return err
	}
	if t.Completed {
		a.println("Completed tasks cannot be changed. Mark the task as not done first.")
		return nil
	}

	d, err := a.readDraft(t.Draft())
	if err != nil {
		return err
	}

	rctx, cancel = a.withTimeout(ctx)
	defer cancel()
	if err := a.taskService.Update(rctx, id, d); err != nil {
		return err
	}
	a.println("Task updated")
	return nil
}

func (a *App) DeleteTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	ok, err := GetConfirm(a.reader, fmt.Sprintf("Delete task %d?", id), a.out)
	if err != nil || !ok {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.taskService.Delete(rctx, id); err != nil {
		return err
	}
	a.println("Task deleted")
	return nil
}

// ToggleTask marks a task done (completed=true) or not done and prints the
// resulting coins and meter.
func (a *App) ToggleTask(ctx context.Context, args []string, completed bool) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t, err := a.taskService.Get(rctx, id)
	if err != nil {
		return err
	}
	if t.Completed == completed {
		if completed {
			a.println("Task is already done.")
		} else {
			a.println("Task is not done yet.")
		}
		return nil
	}

	res, err := a.taskService.Toggle(rctx, id)
	if err != nil {
		return err
	}
	o := res.Outcome
	a.println(fmt.Sprintf("Coins %+d (now %d), %s %+d (now %d)",
		o.CoinDelta, o.Coins, o.Category.DisplayName(), o.MeterDelta, o.Meter))
	return nil
}
