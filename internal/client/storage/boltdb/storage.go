package boltdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

var (
	// BoltDB bucket names
	bucketMetadata = []byte("meta")
	bucketQueue    = []byte("queue")
	bucketAuth     = []byte("auth")
)

var (
	_ storage.Store       = (*Storage)(nil)
	_ storage.AuthStorage = (*Storage)(nil)
)

// entityBucket returns the bucket name for an entity collection
func entityBucket(entityType models.EntityType) []byte {
	return []byte("entity:" + string(entityType))
}

// Storage represents BoltDB storage implementation for client.
// It implements storage.Store and storage.AuthStorage.
type Storage struct {
	db         *bbolt.DB // guarded by mu
	migrations []Migration
	mu         sync.RWMutex
}

// New creates a new BoltDB storage instance and migrates it to the latest schema.
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	return newWithMigrations(ctx, dbPath, migrations)
}

func newWithMigrations(ctx context.Context, dbPath string, list []Migration) (*Storage, error) {
	// Открываем BoltDB; таймаут защищает от вечной блокировки файла другим процессом
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, storage.Fail("open", fmt.Errorf("failed to open boltdb: %w", err))
	}

	s := &Storage{db: db, migrations: list}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
// bbolt waits for open transactions; later calls get ErrStorageClosed.
func (s *Storage) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// handle returns the open database or nil after Close
func (s *Storage) handle() *bbolt.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// View runs fn in a read-only transaction
func (s *Storage) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	db := s.handle()
	if db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var fnErr error
	err := db.View(func(btx *bbolt.Tx) error {
		fnErr = fn(&boltTx{tx: btx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return txFail("view", err)
}

// Update runs fn in a read-write transaction.
// If fn returns an error nothing written through the transaction is kept
// and the error is returned unchanged.
func (s *Storage) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	db := s.handle()
	if db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var fnErr error
	err := db.Update(func(btx *bbolt.Tx) error {
		fnErr = fn(&boltTx{tx: btx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return txFail("update", err)
}

// txFail maps a transaction that raced with Close to ErrStorageClosed
func txFail(op string, err error) error {
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return storage.ErrStorageClosed
	}
	return storage.Fail(op, err)
}

// ClearAll wipes every bucket and re-creates the schema from scratch.
// Used on sign-out, before the next user's data is loaded.
func (s *Storage) ClearAll(ctx context.Context) error {
	db := s.handle()
	if db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		var names [][]byte
		if err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		}); err != nil {
			return err
		}

		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to delete bucket %s: %w", name, err)
			}
		}

		return s.applyMigrations(tx, 0)
	})

	return storage.Fail("clear", err)
}
