package boltdb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

// boltTx implements storage.Tx on top of a bbolt transaction
type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) entities(entityType models.EntityType) (*bbolt.Bucket, error) {
	bucket := t.tx.Bucket(entityBucket(entityType))
	if bucket == nil {
		return nil, storage.Fail("bucket", fmt.Errorf("bucket for %q not found", entityType))
	}
	return bucket, nil
}

func (t *boltTx) queue() (*bbolt.Bucket, error) {
	bucket := t.tx.Bucket(bucketQueue)
	if bucket == nil {
		return nil, storage.Fail("bucket", fmt.Errorf("queue bucket not found"))
	}
	return bucket, nil
}

// Get decodes the entity into dst
func (t *boltTx) Get(entityType models.EntityType, id string, dst any) error {
	bucket, err := t.entities(entityType)
	if err != nil {
		return err
	}

	data := bucket.Get([]byte(id))
	if data == nil {
		return storage.ErrEntityNotFound
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return storage.Fail("get", fmt.Errorf("failed to unmarshal %s %s: %w", entityType, id, err))
	}
	return nil
}

// Put stores v under id
func (t *boltTx) Put(entityType models.EntityType, id string, v any) error {
	bucket, err := t.entities(entityType)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return storage.Fail("put", fmt.Errorf("failed to marshal %s %s: %w", entityType, id, err))
	}

	if err := bucket.Put([]byte(id), data); err != nil {
		return storage.Fail("put", fmt.Errorf("failed to save %s %s: %w", entityType, id, err))
	}
	return nil
}

// Delete hard-removes the entity
func (t *boltTx) Delete(entityType models.EntityType, id string) error {
	bucket, err := t.entities(entityType)
	if err != nil {
		return err
	}

	if err := bucket.Delete([]byte(id)); err != nil {
		return storage.Fail("delete", fmt.Errorf("failed to delete %s %s: %w", entityType, id, err))
	}
	return nil
}

// ForEach iterates over raw records. data is only valid inside fn.
func (t *boltTx) ForEach(entityType models.EntityType, fn func(id string, data []byte) error) error {
	bucket, err := t.entities(entityType)
	if err != nil {
		return err
	}

	return bucket.ForEach(func(k, v []byte) error {
		return fn(string(k), v)
	})
}

// Enqueue appends the item with the next bucket sequence as key
func (t *boltTx) Enqueue(item *models.QueueItem) (uint64, error) {
	bucket, err := t.queue()
	if err != nil {
		return 0, err
	}

	seq, err := bucket.NextSequence()
	if err != nil {
		return 0, storage.Fail("enqueue", fmt.Errorf("failed to allocate sequence: %w", err))
	}
	item.Seq = seq

	data, err := json.Marshal(item)
	if err != nil {
		return 0, storage.Fail("enqueue", fmt.Errorf("failed to marshal queue item: %w", err))
	}

	if err := bucket.Put(itob(seq), data); err != nil {
		return 0, storage.Fail("enqueue", fmt.Errorf("failed to save queue item: %w", err))
	}
	return seq, nil
}

// Dequeue removes a queue item
func (t *boltTx) Dequeue(seq uint64) error {
	bucket, err := t.queue()
	if err != nil {
		return err
	}

	key := itob(seq)
	if bucket.Get(key) == nil {
		return storage.ErrQueueItemNotFound
	}
	if err := bucket.Delete(key); err != nil {
		return storage.Fail("dequeue", fmt.Errorf("failed to delete queue item %d: %w", seq, err))
	}
	return nil
}

// UpdateQueueItem rewrites an existing item in place
func (t *boltTx) UpdateQueueItem(item *models.QueueItem) error {
	bucket, err := t.queue()
	if err != nil {
		return err
	}

	key := itob(item.Seq)
	if bucket.Get(key) == nil {
		return storage.ErrQueueItemNotFound
	}

	data, err := json.Marshal(item)
	if err != nil {
		return storage.Fail("update queue item", fmt.Errorf("failed to marshal queue item: %w", err))
	}
	if err := bucket.Put(key, data); err != nil {
		return storage.Fail("update queue item", fmt.Errorf("failed to save queue item: %w", err))
	}
	return nil
}

// ListQueue returns items in sequence order.
// Keys are big-endian, so cursor order is FIFO order.
func (t *boltTx) ListQueue() ([]*models.QueueItem, error) {
	bucket, err := t.queue()
	if err != nil {
		return nil, err
	}

	items := []*models.QueueItem{}
	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item models.QueueItem
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, storage.Fail("list queue", fmt.Errorf("failed to unmarshal queue item %d: %w", binary.BigEndian.Uint64(k), err))
		}
		items = append(items, &item)
	}
	return items, nil
}

// QueueLen returns the number of queued items
func (t *boltTx) QueueLen() (int, error) {
	bucket, err := t.queue()
	if err != nil {
		return 0, err
	}
	// Stats() не видит незакоммиченные изменения, поэтому считаем курсором
	n := 0
	c := bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n, nil
}

// PendingEntityIDs builds the set of entities with outstanding queue items
func (t *boltTx) PendingEntityIDs() (storage.PendingSet, error) {
	items, err := t.ListQueue()
	if err != nil {
		return nil, err
	}

	pending := storage.PendingSet{}
	for _, item := range items {
		pending.Add(item.EntityType, item.EntityID)
	}
	return pending, nil
}
