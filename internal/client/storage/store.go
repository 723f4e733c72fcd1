package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/tracker/internal/models"
)

// Tx is a single local store transaction.
// All writes made through one Tx commit together or not at all.
type Tx interface {
	// Get decodes the entity into dst. Returns ErrEntityNotFound if it doesn't exist.
	Get(entityType models.EntityType, id string, dst any) error

	// Put stores v under id (idempotent upsert)
	Put(entityType models.EntityType, id string, v any) error

	// Delete hard-removes the entity. Deleting an absent id is not an error.
	Delete(entityType models.EntityType, id string) error

	// ForEach iterates over raw entity records of the type in key order
	ForEach(entityType models.EntityType, fn func(id string, data []byte) error) error

	// Enqueue appends the item to the change queue and returns the assigned sequence id
	Enqueue(item *models.QueueItem) (uint64, error)

	// Dequeue removes a queue item. Returns ErrQueueItemNotFound if it is already gone.
	Dequeue(seq uint64) error

	// UpdateQueueItem rewrites an existing queue item (retry counter)
	UpdateQueueItem(item *models.QueueItem) error

	// ListQueue returns queue items ordered by sequence id (FIFO)
	ListQueue() ([]*models.QueueItem, error)

	// QueueLen returns the number of queued items
	QueueLen() (int, error)

	// PendingEntityIDs returns the set of entity ids that have outstanding queue items
	PendingEntityIDs() (PendingSet, error)
}

// Store is the local persistent store: entities, change queue and metadata.
type Store interface {
	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction
	Update(ctx context.Context, fn func(tx Tx) error) error

	// ClearAll wipes every table (entities, queue, metadata, auth)
	ClearAll(ctx context.Context) error

	MetadataStorage
}

// PendingSet is the derived "dirty" predicate: entity ids with queued intents.
type PendingSet map[models.EntityType]map[string]struct{}

// Add marks the entity as pending.
func (p PendingSet) Add(entityType models.EntityType, id string) {
	ids, ok := p[entityType]
	if !ok {
		ids = make(map[string]struct{})
		p[entityType] = ids
	}
	ids[id] = struct{}{}
}

// Has reports whether the entity has an outstanding queue item.
func (p PendingSet) Has(entityType models.EntityType, id string) bool {
	_, ok := p[entityType][id]
	return ok
}

// Get loads a single entity of type T.
func Get[T any](tx Tx, entityType models.EntityType, id string) (*T, error) {
	var v T
	if err := tx.Get(entityType, id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// List decodes all entities of the type accepted by keep. A nil keep accepts everything.
func List[T any](tx Tx, entityType models.EntityType, keep func(*T) bool) ([]*T, error) {
	result := []*T{}
	err := tx.ForEach(entityType, func(id string, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return Fail("list", fmt.Errorf("failed to unmarshal %s %s: %w", entityType, id, err))
		}
		if keep == nil || keep(&v) {
			result = append(result, &v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
