package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
)

// Task is a row of the tasks table.
type Task struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"user_id"`
	Description string        `json:"description"`
	Category    game.Category `json:"category"`
	Due         Date          `json:"due"`
	Complexity  int           `json:"complexity"`
	Completed   bool          `json:"completed"`
}

// TaskDraft is the editable part of a task.
type TaskDraft struct {
	Description string        `json:"description"`
	Category    game.Category `json:"category"`
	Due         Date          `json:"due"`
	Complexity  int           `json:"complexity"`
}

func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: description is required", common.ErrInvalidInput)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("%w: category %q", common.ErrInvalidInput, d.Category)
	}
	if d.Due.IsZero() {
		return fmt.Errorf("%w: due date is required", common.ErrInvalidInput)
	}
	if d.Complexity < game.MinComplexity || d.Complexity > game.MaxComplexity {
		return fmt.Errorf("%w: complexity must be %d..%d", common.ErrInvalidInput, game.MinComplexity, game.MaxComplexity)
	}
	return nil
}

// Draft returns the editable fields of t.
func (t Task) Draft() TaskDraft {
	return TaskDraft{
		Description: t.Description,
		Category:    t.Category,
		Due:         t.Due,
		Complexity:  t.Complexity,
	}
}

// TaskFilter selects tasks by completion.
type TaskFilter string

const (
	FilterAll         TaskFilter = "all"
	FilterCompleted   TaskFilter = "completed"
	FilterUncompleted TaskFilter = "uncompleted"
)

func ParseTaskFilter(s string) (TaskFilter, error) {
	switch f := TaskFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterUncompleted:
		return f, nil
	}
	return "", fmt.Errorf("%w: filter %q, want all|completed|uncompleted", common.ErrInvalidInput, s)
}

func (f TaskFilter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterUncompleted:
		return !t.Completed
	}
	return true
}
