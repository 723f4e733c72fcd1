package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

func TestHabitService_Create(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Run", Color: "#0f0"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", habit.ID)
	assert.NotNil(t, habit.History)
	assert.Empty(t, habit.History)

	items := f.queue(t)
	require.Len(t, items, 1)
	assert.Equal(t, models.EntityHabit, items[0].EntityType)
	assert.Equal(t, models.ActionCreate, items[0].Action)
	assert.JSONEq(t, `{"name":"Run","color":"#0f0"}`, string(items[0].Payload))
	assert.Equal(t, 1, f.notifier.count())
}

func TestHabitService_ToggleDate(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Read"})
	require.NoError(t, err)

	for _, date := range []string{"2026-03-09", "2026-03-10"} {
		habit, err = s.ToggleDate(ctx, habit.ID, date)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"2026-03-09", "2026-03-10"}, habit.History)
	assert.Equal(t, 2, habit.Streak)
	assert.Equal(t, 2, habit.BestStreak)

	habit, err = s.ToggleDate(ctx, habit.ID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-09"}, habit.History)
	assert.Equal(t, 1, habit.Streak)
	assert.Equal(t, 2, habit.BestStreak)

	items := f.queue(t)
	require.Len(t, items, 4)
	assert.Equal(t, models.ActionToggleDate, items[3].Action)
	assert.JSONEq(t, `{"date":"2026-03-10"}`, string(items[3].Payload))
}

func TestHabitService_ToggleDate_InvalidDate(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Read"})
	require.NoError(t, err)

	_, err = s.ToggleDate(ctx, habit.ID, "10.03.2026")
	require.Error(t, err)
	assert.Len(t, f.queue(t), 1)
}

func TestHabitService_Delete_RemovesTodayTasks(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Stretch"})
	require.NoError(t, err)

	today := &models.Task{ID: "t-today", Title: "Stretch", HabitID: habit.ID, DueDate: "2026-03-10"}
	yesterday := &models.Task{ID: "t-yesterday", Title: "Stretch", HabitID: habit.ID, DueDate: "2026-03-09"}
	other := &models.Task{ID: "t-other", Title: "Other", HabitID: "another", DueDate: "2026-03-10"}
	for _, task := range []*models.Task{today, yesterday, other} {
		f.put(t, models.EntityTask, task.ID, task)
	}

	require.NoError(t, s.Delete(ctx, habit.ID))

	trashed, err := s.Get(ctx, habit.ID)
	require.NoError(t, err)
	assert.True(t, trashed.Trashed)
	require.NotNil(t, trashed.TrashedAt)

	tasks, err := f.tasks().List(ctx, nil)
	require.NoError(t, err)
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []string{"t-yesterday", "t-other"}, ids)

	items := f.queue(t)
	require.Len(t, items, 2)
	assert.Equal(t, models.ActionDelete, items[1].Action)
	assert.Equal(t, habit.ID, items[1].EntityID)
	assert.JSONEq(t, `{"date":"2026-03-10"}`, string(items[1].Payload))

	active, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	trash, err := s.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
}

func TestHabitService_TrashedRejectsEdits(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Meditate"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, habit.ID))

	name := "Sit"
	_, err = s.Update(ctx, habit.ID, models.HabitPatch{Name: &name})
	assert.True(t, errors.Is(err, ErrHabitTrashed))

	_, err = s.ToggleDate(ctx, habit.ID, "2026-03-10")
	assert.True(t, errors.Is(err, ErrHabitTrashed))

	err = s.Delete(ctx, habit.ID)
	assert.True(t, errors.Is(err, ErrHabitTrashed))

	assert.Len(t, f.queue(t), 2)
}

func TestHabitService_Restore(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Swim"})
	require.NoError(t, err)
	_, err = s.ToggleDate(ctx, habit.ID, "2026-03-10")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, habit.ID))

	restored, err := s.Restore(ctx, habit.ID)
	require.NoError(t, err)
	assert.False(t, restored.Trashed)
	assert.Nil(t, restored.TrashedAt)
	assert.Equal(t, 0, restored.Streak)
	assert.Equal(t, 0, restored.BestStreak)
	assert.NotNil(t, restored.History)
	assert.Empty(t, restored.History)

	items := f.queue(t)
	require.Len(t, items, 4)
	assert.Equal(t, models.ActionRestore, items[3].Action)

	_, err = s.Restore(ctx, habit.ID)
	assert.True(t, errors.Is(err, ErrHabitNotTrashed))

	_, err = s.Restore(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFoundLocally))
}

func TestHabitService_Purge(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Journal"})
	require.NoError(t, err)

	err = s.Purge(ctx, habit.ID)
	assert.True(t, errors.Is(err, ErrHabitNotTrashed))

	require.NoError(t, s.Delete(ctx, habit.ID))
	require.NoError(t, s.Purge(ctx, habit.ID))

	_, err = s.Get(ctx, habit.ID)
	assert.True(t, errors.Is(err, storage.ErrEntityNotFound))

	items := f.queue(t)
	require.Len(t, items, 3)
	assert.Equal(t, models.ActionPurge, items[2].Action)
	assert.Equal(t, 3, f.notifier.count())
}

func TestHabitService_Update(t *testing.T) {
	f := newFixture(t)
	s := f.habits()
	ctx := context.Background()

	habit, err := s.Create(ctx, models.HabitInput{Name: "Water"})
	require.NoError(t, err)

	desc := "8 glasses"
	color := "#00f"
	updated, err := s.Update(ctx, habit.ID, models.HabitPatch{Description: &desc, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "8 glasses", updated.Description)

	items := f.queue(t)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"description":"8 glasses","color":"#00f"}`, string(items[1].Payload))

	bad := "blue"
	_, err = s.Update(ctx, habit.ID, models.HabitPatch{Color: &bad})
	require.Error(t, err)
	assert.Len(t, f.queue(t), 2)
}
