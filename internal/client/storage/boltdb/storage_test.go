package boltdb

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

// createTestStorage создает временное хранилище для тестов
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestNew_CreatesSchema(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	err = store.db.View(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketMetadata, bucketQueue, bucketAuth, entityBucket(models.EntityTask), entityBucket(models.EntityHabit)} {
			if tx.Bucket(b) == nil {
				return errors.New("missing bucket " + string(b))
			}
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Nil(t, store.db)
	assert.NoError(t, store.Close())
}

func TestClosedStorage(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()
	noop := func(tx storage.Tx) error { return nil }

	assert.ErrorIs(t, store.View(ctx, noop), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Update(ctx, noop), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.ClearAll(ctx), storage.ErrStorageClosed)
	_, err = store.GetLastSyncTimestamp(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestClose_ConcurrentWithTransactions(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "race.db"))
	require.NoError(t, err)

	ctx := context.Background()
	noop := func(tx storage.Tx) error { return nil }

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				errs <- store.View(ctx, noop)
			}
		}()
	}

	require.NoError(t, store.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, storage.ErrStorageClosed)
		}
	}
	assert.ErrorIs(t, store.Update(ctx, noop), storage.ErrStorageClosed)
}

func TestUpdate_CancelledContext(t *testing.T) {
	store := createTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Update(ctx, func(tx storage.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdate_RollbackOnError(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	domainErr := errors.New("validation failed")

	// Запись сущности и постановка в очередь должны откатиться вместе
	err := store.Update(ctx, func(tx storage.Tx) error {
		task := models.NewTask("task-1", models.TaskInput{Title: "A"}, time.Now())
		if err := tx.Put(models.EntityTask, task.ID, task); err != nil {
			return err
		}
		if _, err := tx.Enqueue(&models.QueueItem{EntityType: models.EntityTask, Action: models.ActionCreate, EntityID: task.ID}); err != nil {
			return err
		}
		return domainErr
	})
	assert.Equal(t, domainErr, err)
	assert.NotErrorIs(t, err, storage.ErrStorageFailure)

	err = store.View(ctx, func(tx storage.Tx) error {
		_, err := storage.Get[models.Task](tx, models.EntityTask, "task-1")
		assert.ErrorIs(t, err, storage.ErrEntityNotFound)

		n, err := tx.QueueLen()
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		return nil
	})
	require.NoError(t, err)
}

func TestClearAll(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.Update(ctx, func(tx storage.Tx) error {
		if err := tx.Put(models.EntityTask, "task-1", models.NewTask("task-1", models.TaskInput{Title: "A"}, time.Now())); err != nil {
			return err
		}
		if err := tx.Put(models.EntityHabit, "habit-1", models.NewHabit("habit-1", models.HabitInput{Name: "B"}, time.Now())); err != nil {
			return err
		}
		_, err := tx.Enqueue(&models.QueueItem{EntityType: models.EntityTask, Action: models.ActionCreate, EntityID: "task-1"})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, 42))
	require.NoError(t, store.SaveAuth(ctx, &storage.AuthData{UserID: "u1", AccessToken: "tok"}))

	require.NoError(t, store.ClearAll(ctx))

	err = store.View(ctx, func(tx storage.Tx) error {
		for _, typ := range models.EntityTypes() {
			count := 0
			require.NoError(t, tx.ForEach(typ, func(string, []byte) error {
				count++
				return nil
			}))
			assert.Zero(t, count, "entities of %s", typ)
		}
		n, err := tx.QueueLen()
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	})
	require.NoError(t, err)

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, ts)

	_, err = store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	// После очистки последовательность очереди начинается заново
	err = store.Update(ctx, func(tx storage.Tx) error {
		seq, err := tx.Enqueue(&models.QueueItem{EntityType: models.EntityTask, Action: models.ActionCreate, EntityID: "task-2"})
		assert.Equal(t, uint64(1), seq)
		return err
	})
	require.NoError(t, err)
}
