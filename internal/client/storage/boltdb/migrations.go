package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

const keySchemaVersion = "schema_version"

// Migration is one schema step of the local store.
// Steps are additive; removing a bucket is only allowed once it has been flushed.
type Migration struct {
	Up      func(tx *bbolt.Tx) error
	Name    string
	Version int
}

// migrations is the ordered schema history of the local store.
// Never edit an applied step: append a new one.
var migrations = []Migration{
	{Version: 1, Name: "core buckets", Up: createBuckets(bucketMetadata, bucketQueue, entityBucket(models.EntityTask))},
	{Version: 2, Name: "habits", Up: createBuckets(entityBucket(models.EntityHabit))},
	{Version: 3, Name: "auth", Up: createBuckets(bucketAuth)},
}

// createBuckets returns a step that creates the buckets if they don't exist
func createBuckets(names ...[]byte) func(tx *bbolt.Tx) error {
	return func(tx *bbolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	}
}

// dropBucket returns a step that removes a bucket.
// The step fails with ErrMigrationNotFlushed while the bucket still holds keys,
// so the migration is retried after its data has been drained.
// Use it when a schema version retires a bucket, e.g. a queue format that
// is replaced: the old bucket goes only once the engine has pushed it empty.
func dropBucket(name []byte) func(tx *bbolt.Tx) error {
	return func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(name)
		if bucket == nil {
			return nil
		}
		if k, _ := bucket.Cursor().First(); k != nil {
			return fmt.Errorf("drop %s: %w", name, storage.ErrMigrationNotFlushed)
		}
		return tx.DeleteBucket(name)
	}
}

// migrate applies every pending step in a single transaction
func (s *Storage) migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.handle().Update(func(tx *bbolt.Tx) error {
		return s.applyMigrations(tx, readSchemaVersion(tx))
	})
	return storage.Fail("migrate", err)
}

// applyMigrations runs steps newer than current and records the resulting version
func (s *Storage) applyMigrations(tx *bbolt.Tx, current int) error {
	version := current
	for _, m := range s.migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(tx); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		version = m.Version
	}

	if version == current && current != 0 {
		return nil
	}

	meta, err := tx.CreateBucketIfNotExists(bucketMetadata)
	if err != nil {
		return fmt.Errorf("failed to create metadata bucket: %w", err)
	}
	return meta.Put([]byte(keySchemaVersion), itob(uint64(version)))
}

// readSchemaVersion returns 0 for a fresh database
func readSchemaVersion(tx *bbolt.Tx) int {
	meta := tx.Bucket(bucketMetadata)
	if meta == nil {
		return 0
	}
	v := meta.Get([]byte(keySchemaVersion))
	if len(v) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(v))
}

// SchemaVersion returns the applied schema version
func (s *Storage) SchemaVersion(ctx context.Context) (int, error) {
	db := s.handle()
	if db == nil {
		return 0, storage.ErrStorageClosed
	}

	var version int
	err := db.View(func(tx *bbolt.Tx) error {
		version = readSchemaVersion(tx)
		return nil
	})
	if err != nil {
		return 0, storage.Fail("schema version", err)
	}
	return version, nil
}

// itob encodes v as a big-endian key so byte order equals numeric order
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
