package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

// ErrNotFoundLocally indicates that a mutation referenced an id missing from the local store.
// Ids are client-issued, so this points at an ordering bug upstream, not at a sync condition.
var ErrNotFoundLocally = errors.New("entity not found locally")

// Notifier is told about every committed local mutation.
// The sync engine implements it; Trigger must not block.
type Notifier interface {
	Trigger()
}

// Option configures a command service.
type Option func(*base)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// WithIDGenerator overrides identifier minting.
func WithIDGenerator(newID func() string) Option {
	return func(b *base) {
		b.newID = newID
	}
}

// base holds what every command service shares
type base struct {
	store    storage.Store
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

func newBase(store storage.Store, notifier Notifier, opts []Option) base {
	b := base{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// mutate runs fn in one local transaction together with the queue append of
// the item fn returns, so the entity write and its intent commit atomically.
// A nil item means nothing changed and nothing is queued.
func (b *base) mutate(ctx context.Context, fn func(tx storage.Tx) (*models.QueueItem, error)) error {
	queued := false
	err := b.store.Update(ctx, func(tx storage.Tx) error {
		item, err := fn(tx)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		item.CreatedAt = b.now()
		if _, err := tx.Enqueue(item); err != nil {
			return fmt.Errorf("failed to enqueue %s %s: %w", item.Action, item.EntityType, err)
		}
		queued = true
		return nil
	})
	if err != nil {
		return err
	}

	if queued && b.notifier != nil {
		b.notifier.Trigger()
	}
	return nil
}

// queueItem builds a queue item with a JSON payload
func queueItem(entityType models.EntityType, action models.Action, id string, payload any) (*models.QueueItem, error) {
	item := &models.QueueItem{
		EntityType: entityType,
		Action:     action,
		EntityID:   id,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
		}
		item.Payload = data
	}
	return item, nil
}

// load reads an entity for a mutation, mapping absence to ErrNotFoundLocally
func load[T any](tx storage.Tx, entityType models.EntityType, id string) (*T, error) {
	v, err := storage.Get[T](tx, entityType, id)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, fmt.Errorf("%s %s: %w", entityType, id, ErrNotFoundLocally)
		}
		return nil, err
	}
	return v, nil
}
