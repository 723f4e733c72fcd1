package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/internal/validation"
)

var (
	// ErrHabitTrashed indicates an operation on a habit that is in the trash
	ErrHabitTrashed = errors.New("habit is in the trash")

	// ErrHabitNotTrashed indicates restore or purge of a habit that is not in the trash
	ErrHabitNotTrashed = errors.New("habit is not in the trash")
)

// HabitService is the command layer for habits.
// Habits are soft-deleted into a trash and can be restored or purged from it.
type HabitService struct {
	base
}

// NewHabitService creates a new habit command service
func NewHabitService(store storage.Store, notifier Notifier, opts ...Option) *HabitService {
	return &HabitService{base: newBase(store, notifier, opts)}
}

// Create stores a new habit with an empty history and queues its creation.
func (s *HabitService) Create(ctx context.Context, in models.HabitInput) (*models.Habit, error) {
	if err := validation.ValidateHabitInput(in); err != nil {
		return nil, err
	}

	habit := models.NewHabit(s.newID(), in, s.now())

	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		if err := tx.Put(models.EntityHabit, habit.ID, habit); err != nil {
			return nil, fmt.Errorf("failed to save habit: %w", err)
		}
		return queueItem(models.EntityHabit, models.ActionCreate, habit.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// Get returns a habit by id, trashed or not
func (s *HabitService) Get(ctx context.Context, id string) (*models.Habit, error) {
	var habit *models.Habit
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		habit, err = storage.Get[models.Habit](tx, models.EntityHabit, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return habit, nil
}

// List returns habits outside the trash
func (s *HabitService) List(ctx context.Context) ([]*models.Habit, error) {
	return s.list(ctx, func(h *models.Habit) bool { return !h.Trashed })
}

// ListTrash returns trashed habits
func (s *HabitService) ListTrash(ctx context.Context) ([]*models.Habit, error) {
	return s.list(ctx, func(h *models.Habit) bool { return h.Trashed })
}

func (s *HabitService) list(ctx context.Context, keep func(*models.Habit) bool) ([]*models.Habit, error) {
	var habits []*models.Habit
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		habits, err = storage.List(tx, models.EntityHabit, keep)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// Update merges the patch and queues only the fields that changed.
func (s *HabitService) Update(ctx context.Context, id string, patch models.HabitPatch) (*models.Habit, error) {
	if err := validation.ValidateHabitPatch(patch); err != nil {
		return nil, err
	}

	var habit *models.Habit
	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		var err error
		if habit, err = s.loadActive(tx, id); err != nil {
			return nil, err
		}

		changed := habit.Apply(patch, s.now())
		if changed.IsEmpty() {
			return nil, nil
		}

		if err := tx.Put(models.EntityHabit, id, habit); err != nil {
			return nil, fmt.Errorf("failed to save habit: %w", err)
		}
		return queueItem(models.EntityHabit, models.ActionUpdate, id, changed)
	})
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// ToggleDate checks or unchecks date. Only the date travels in the payload.
func (s *HabitService) ToggleDate(ctx context.Context, id, date string) (*models.Habit, error) {
	if err := validation.ValidateDate("date", date, false); err != nil {
		return nil, err
	}

	var habit *models.Habit
	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		var err error
		if habit, err = s.loadActive(tx, id); err != nil {
			return nil, err
		}

		now := s.now()
		habit.ToggleDate(date, now, now)

		if err := tx.Put(models.EntityHabit, id, habit); err != nil {
			return nil, fmt.Errorf("failed to save habit: %w", err)
		}
		return queueItem(models.EntityHabit, models.ActionToggleDate, id, models.ToggleDatePayload{Date: date})
	})
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// Delete moves the habit to the trash and, in the same transaction, removes
// its task instances due today.
func (s *HabitService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		habit, err := s.loadActive(tx, id)
		if err != nil {
			return nil, err
		}

		now := s.now()
		habit.Trash(now)
		if err := tx.Put(models.EntityHabit, id, habit); err != nil {
			return nil, fmt.Errorf("failed to save habit: %w", err)
		}

		today := models.FormatDate(now)
		children, err := storage.List(tx, models.EntityTask, func(t *models.Task) bool {
			return t.HabitID == id && t.DueDate == today
		})
		if err != nil {
			return nil, err
		}
		for _, task := range children {
			if err := tx.Delete(models.EntityTask, task.ID); err != nil {
				return nil, fmt.Errorf("failed to delete habit task %s: %w", task.ID, err)
			}
		}

		return queueItem(models.EntityHabit, models.ActionDelete, id, models.TrashPayload{Date: today})
	})
}

// Restore takes the habit out of the trash with streak and history reset
// to an empty baseline. Restoring forfeits history.
func (s *HabitService) Restore(ctx context.Context, id string) (*models.Habit, error) {
	var habit *models.Habit
	err := s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		var err error
		if habit, err = load[models.Habit](tx, models.EntityHabit, id); err != nil {
			return nil, err
		}
		if !habit.Trashed {
			return nil, fmt.Errorf("restore %s: %w", id, ErrHabitNotTrashed)
		}

		habit.ResetProgress(s.now())

		if err := tx.Put(models.EntityHabit, id, habit); err != nil {
			return nil, fmt.Errorf("failed to save habit: %w", err)
		}
		return queueItem(models.EntityHabit, models.ActionRestore, id, nil)
	})
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// Purge permanently removes a trashed habit.
func (s *HabitService) Purge(ctx context.Context, id string) error {
	return s.mutate(ctx, func(tx storage.Tx) (*models.QueueItem, error) {
		habit, err := load[models.Habit](tx, models.EntityHabit, id)
		if err != nil {
			return nil, err
		}
		if !habit.Trashed {
			return nil, fmt.Errorf("purge %s: %w", id, ErrHabitNotTrashed)
		}

		if err := tx.Delete(models.EntityHabit, id); err != nil {
			return nil, fmt.Errorf("failed to purge habit: %w", err)
		}
		return queueItem(models.EntityHabit, models.ActionPurge, id, nil)
	})
}

// loadActive loads a habit that is not in the trash
func (s *HabitService) loadActive(tx storage.Tx, id string) (*models.Habit, error) {
	habit, err := load[models.Habit](tx, models.EntityHabit, id)
	if err != nil {
		return nil, err
	}
	if habit.Trashed {
		return nil, fmt.Errorf("habit %s: %w", id, ErrHabitTrashed)
	}
	return habit, nil
}
