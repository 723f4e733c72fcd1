package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/internal/validation"
)

func TestTaskService_Create(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	in := models.TaskInput{Title: "Buy milk", DueDate: "2026-03-11", Priority: 2}
	task, err := s.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "id-1", task.ID)
	assert.False(t, task.Completed)
	assert.Equal(t, testNow, task.CreatedAt)

	stored, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)

	items := f.queue(t)
	require.Len(t, items, 1)
	assert.Equal(t, models.EntityTask, items[0].EntityType)
	assert.Equal(t, models.ActionCreate, items[0].Action)
	assert.Equal(t, task.ID, items[0].EntityID)
	assert.JSONEq(t, `{"title":"Buy milk","due_date":"2026-03-11","priority":2}`, string(items[0].Payload))
	assert.Equal(t, 1, f.notifier.count())
}

func TestTaskService_Create_Invalid(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()

	_, err := s.Create(context.Background(), models.TaskInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalid))

	assert.Empty(t, f.queue(t))
	assert.Equal(t, 0, f.notifier.count())
}

func TestTaskService_Update(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	task, err := s.Create(ctx, models.TaskInput{Title: "Read", Notes: "ch. 1"})
	require.NoError(t, err)

	title := "Read"
	notes := "ch. 2"
	updated, err := s.Update(ctx, task.ID, models.TaskPatch{Title: &title, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "ch. 2", updated.Notes)

	items := f.queue(t)
	require.Len(t, items, 2)
	assert.Equal(t, models.ActionUpdate, items[1].Action)
	assert.JSONEq(t, `{"notes":"ch. 2"}`, string(items[1].Payload))
	assert.Equal(t, 2, f.notifier.count())
}

func TestTaskService_Update_NoChanges(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	task, err := s.Create(ctx, models.TaskInput{Title: "Same"})
	require.NoError(t, err)

	title := "Same"
	_, err = s.Update(ctx, task.ID, models.TaskPatch{Title: &title})
	require.NoError(t, err)

	assert.Len(t, f.queue(t), 1)
	assert.Equal(t, 1, f.notifier.count())
}

func TestTaskService_NotFoundLocally(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	title := "x"
	tests := []struct {
		name string
		call func() error
	}{
		{"update", func() error { _, err := s.Update(ctx, "missing", models.TaskPatch{Title: &title}); return err }},
		{"toggle", func() error { _, err := s.Toggle(ctx, "missing"); return err }},
		{"delete", func() error { return s.Delete(ctx, "missing") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFoundLocally))
		})
	}

	assert.Empty(t, f.queue(t))
	assert.Equal(t, 0, f.notifier.count())
}

func TestTaskService_Toggle(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	task, err := s.Create(ctx, models.TaskInput{Title: "Walk"})
	require.NoError(t, err)

	toggled, err := s.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.CompletedAt)

	toggled, err = s.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Nil(t, toggled.CompletedAt)

	items := f.queue(t)
	require.Len(t, items, 3)
	for _, item := range items[1:] {
		assert.Equal(t, models.ActionToggle, item.Action)
		assert.JSONEq(t, `{}`, string(item.Payload))
	}
}

func TestTaskService_Delete(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	task, err := s.Create(ctx, models.TaskInput{Title: "Temp"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, task.ID))

	_, err = s.Get(ctx, task.ID)
	assert.True(t, errors.Is(err, storage.ErrEntityNotFound))

	items := f.queue(t)
	require.Len(t, items, 2)
	assert.Equal(t, models.ActionDelete, items[1].Action)
	assert.Empty(t, items[1].Payload)
}

func TestTaskService_List(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, models.TaskInput{Title: title})
		require.NoError(t, err)
	}
	_, err := s.Toggle(ctx, "id-2")
	require.NoError(t, err)

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := s.List(ctx, func(t *models.Task) bool { return !t.Completed })
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestTaskService_ClosedStore(t *testing.T) {
	f := newFixture(t)
	s := f.tasks()
	require.NoError(t, f.store.Close())

	_, err := s.Create(context.Background(), models.TaskInput{Title: "late"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
	assert.Equal(t, 0, f.notifier.count())
}
