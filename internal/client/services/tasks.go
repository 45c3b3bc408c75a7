package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/game"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

// TaskService manages the signed-in user's tasks.
//
// Completed tasks are frozen: Update and Delete return common.ErrTaskCompleted
// until the task is toggled back.
type TaskService interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, id int64) (models.Task, error)
	Create(ctx context.Context, d models.TaskDraft) (models.Task, error)
	Update(ctx context.Context, id int64, d models.TaskDraft) error
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (ToggleResult, error)
}

// ToggleResult is the task after a toggle and the balances it produced.
type ToggleResult struct {
	Task    models.Task
	Outcome game.Outcome
}

type taskService struct {
	backend client.Backend
	log     logging.Logger
}

func NewTaskService(backend client.Backend, log logging.Logger) TaskService {
	return &taskService{backend: backend, log: log}
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return nil, err
	}

	all, err := s.backend.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *taskService) Get(ctx context.Context, id int64) (models.Task, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return models.Task{}, err
	}

	t, err := s.backend.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	if t.UserID != "" && t.UserID != userID {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, common.ErrNotFound)
	}
	return t, nil
}

func (s *taskService) Create(ctx context.Context, d models.TaskDraft) (models.Task, error) {
	if err := d.Validate(); err != nil {
		return models.Task{}, err
	}
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return models.Task{}, err
	}

	t, err := s.backend.CreateTask(ctx, userID, d)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *taskService) Update(ctx context.Context, id int64, d models.TaskDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := s.editable(ctx, id); err != nil {
		return err
	}
	if err := s.backend.UpdateTask(ctx, id, d); err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return nil
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	if _, err := s.editable(ctx, id); err != nil {
		return err
	}
	if err := s.backend.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *taskService) editable(ctx context.Context, id int64) (models.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if t.Completed {
		return models.Task{}, fmt.Errorf("task %d: %w", id, common.ErrTaskCompleted)
	}
	return t, nil
}

// Toggle flips the completion of a task and applies its effect. Writes go
// coins, then meter, then task; a failed write stops the sequence and the
// error names the step that failed. Insufficient coins abort before any
// write.
func (s *taskService) Toggle(ctx context.Context, id int64) (ToggleResult, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return ToggleResult{}, err
	}
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return ToggleResult{}, err
	}

	profile, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("get profile: %w", err)
	}
	meters, err := s.backend.GetMeters(ctx, userID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("get meters: %w", err)
	}

	completing := !t.Completed
	out, err := game.CompletionEffect(meters, profile.CoinBalance, t.Category, t.Complexity, completing)
	if err != nil {
		return ToggleResult{}, err
	}

	if err := s.backend.UpdateCoinBalance(ctx, userID, out.Coins); err != nil {
		return ToggleResult{}, fmt.Errorf("update coin balance: %w", err)
	}
	if err := s.backend.UpdateMeter(ctx, userID, t.Category, out.Meter); err != nil {
		s.log.Error(ctx, "meter write failed after coin write", "task_id", id, "coins", out.Coins, "error", err)
		return ToggleResult{}, fmt.Errorf("update %s meter: %w", t.Category, err)
	}
	if err := s.backend.SetTaskCompleted(ctx, id, completing); err != nil {
		s.log.Error(ctx, "task write failed after balance writes", "task_id", id, "coins", out.Coins, "meter", out.Meter, "error", err)
		return ToggleResult{}, fmt.Errorf("update task %d: %w", id, err)
	}

	t.Completed = completing
	s.log.Debug(ctx, "task toggled", "task_id", id, "completed", completing, "coins", out.Coins, "meter", out.Meter)
	return ToggleResult{Task: t, Outcome: out}, nil
}
