package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

func TestMigrate_UpgradeKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "upgrade.db")

	// Открываем базу со старой схемой (только версия 1)
	old, err := newWithMigrations(ctx, dbPath, migrations[:1])
	require.NoError(t, err)

	version, err := old.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	task := models.NewTask("task-1", models.TaskInput{Title: "Survives upgrade"}, time.Now())
	require.NoError(t, old.Update(ctx, func(tx storage.Tx) error {
		if err := tx.Put(models.EntityTask, task.ID, task); err != nil {
			return err
		}
		_, err := tx.Enqueue(&models.QueueItem{EntityType: models.EntityTask, Action: models.ActionCreate, EntityID: task.ID})
		return err
	}))

	// Habits bucket ещё не существует
	err = old.Update(ctx, func(tx storage.Tx) error {
		return tx.Put(models.EntityHabit, "h1", models.NewHabit("h1", models.HabitInput{Name: "x"}, time.Now()))
	})
	assert.ErrorIs(t, err, storage.ErrStorageFailure)
	require.NoError(t, old.Close())

	upgraded, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer upgraded.Close()

	version, err = upgraded.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	require.NoError(t, upgraded.View(ctx, func(tx storage.Tx) error {
		got, err := storage.Get[models.Task](tx, models.EntityTask, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Survives upgrade", got.Title)

		n, err := tx.QueueLen()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	}))
}

func TestMigrate_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	first, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, first.SaveLastSyncTimestamp(ctx, 100))
	require.NoError(t, first.Close())

	second, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer second.Close()

	ts, err := second.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), ts)
}

func TestMigrate_DropBucketRequiresFlush(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "drop.db")
	legacy := []byte("legacy")

	withLegacy := append(append([]Migration{}, migrations...), Migration{
		Version: 4, Name: "legacy", Up: createBuckets(legacy),
	})
	store, err := newWithMigrations(ctx, dbPath, withLegacy)
	require.NoError(t, err)
	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(legacy).Put([]byte("k"), []byte("v"))
	}))
	require.NoError(t, store.Close())

	withDrop := append(append([]Migration{}, withLegacy...), Migration{
		Version: 5, Name: "drop legacy", Up: dropBucket(legacy),
	})

	// Bucket не пуст: миграция отклоняется, данные и версия не тронуты
	_, err = newWithMigrations(ctx, dbPath, withDrop)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrMigrationNotFlushed)

	store, err = newWithMigrations(ctx, dbPath, withLegacy)
	require.NoError(t, err)
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	// Сбрасываем данные и повторяем
	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(legacy).Delete([]byte("k"))
	}))
	require.NoError(t, store.Close())

	store, err = newWithMigrations(ctx, dbPath, withDrop)
	require.NoError(t, err)
	defer store.Close()

	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, version)
	require.NoError(t, store.db.View(func(tx *bbolt.Tx) error {
		assert.Nil(t, tx.Bucket(legacy))
		return nil
	}))
}

func TestMetadata_LastSyncTimestamp(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.SaveLastSyncTimestamp(ctx, 1234567890))

	ts, err = store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), ts)
}

func TestAuth_SaveGetDelete(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	auth := &storage.AuthData{UserID: "user-1", AccessToken: "token", ServerURL: "http://localhost:8080"}
	require.NoError(t, store.SaveAuth(ctx, auth))

	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth, got)

	require.NoError(t, store.DeleteAuth(ctx))
	_, err = store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}
