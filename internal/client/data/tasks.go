package data

import (
	"context"
	"fmt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/internal/validation"
)

// TaskService is the command layer for tasks.
// Tasks are hard-deleted: a removed task is gone locally at once.
type TaskService struct {
	base
}

// NewTaskService creates a new task command service
func NewTaskService(store storage.Store, notifier Notifier, opts ...Option) *TaskService {
	return &TaskService{base: newBase(store, notifier, opts)}
}

// Create stores a new task under a freshly minted id and queues its creation
// with the original input as payload.
func (s *TaskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if err := validation.ValidateTaskInput(in); err != nil {
		return nil, err
	}

	task := models.NewTask(s.newID(), in, s.now())

	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		if err := tx.Put(models.EntityTask, task.ID, task); err != nil {
			return nil, fmt.Errorf("failed to save task: %w", err)
		}
		return queueItem(models.EntityTask, models.ActionCreate, task.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Get returns a task by id
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	var task *models.Task
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		task, err = storage.Get[models.Task](tx, models.EntityTask, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// List returns tasks accepted by keep (all tasks when keep is nil)
func (s *TaskService) List(ctx context.Context, keep func(*models.Task) bool) ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		tasks, err = storage.List(tx, models.EntityTask, keep)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update merges the patch and queues only the fields that changed.
func (s *TaskService) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := validation.ValidateTaskPatch(patch); err != nil {
		return nil, err
	}

	var task *models.Task
	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		var err error
		if task, err = load[models.Task](tx, models.EntityTask, id); err != nil {
			return nil, err
		}

		changed := task.Apply(patch, s.now())
		if changed.IsEmpty() {
			return nil, nil
		}

		if err := tx.Put(models.EntityTask, id, task); err != nil {
			return nil, fmt.Errorf("failed to save task: %w", err)
		}
		return queueItem(models.EntityTask, models.ActionUpdate, id, changed)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Toggle flips the completion flag. The queued intent carries no value:
// the server flips its own copy, so replays commute.
func (s *TaskService) Toggle(ctx context.Context, id string) (*models.Task, error) {
	var task *models.Task
	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		var err error
		if task, err = load[models.Task](tx, models.EntityTask, id); err != nil {
			return nil, err
		}

		task.ToggleCompleted(s.now())

		if err := tx.Put(models.EntityTask, id, task); err != nil {
			return nil, fmt.Errorf("failed to save task: %w", err)
		}
		return queueItem(models.EntityTask, models.ActionToggle, id, struct{}{})
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes the task locally at once and queues the delete.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		if _, err := load[models.Task](tx, models.EntityTask, id); err != nil {
			return nil, err
		}
		if err := tx.Delete(models.EntityTask, id); err != nil {
			return nil, fmt.Errorf("failed to delete task: %w", err)
		}
		return queueItem(models.EntityTask, models.ActionDelete, id, nil)
	})
}
