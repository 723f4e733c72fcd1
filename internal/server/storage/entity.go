package storage

import (
	"context"
	"encoding/json"

	"github.com/iudanet/tracker/internal/models"
)

// EntityTx is the set of entity operations available inside a transaction.
// Entities are scoped by user and stored as JSON documents.
type EntityTx interface {
	// ListEntities returns every entity of the type owned by the user, ordered by id
	ListEntities(ctx context.Context, userID string, entityType models.EntityType) ([]json.RawMessage, error)

	// GetEntity returns ErrEntityNotFound if the entity doesn't exist
	GetEntity(ctx context.Context, userID string, entityType models.EntityType, id string) (json.RawMessage, error)

	// InsertEntity returns ErrEntityExists if the id is taken
	InsertEntity(ctx context.Context, userID string, entityType models.EntityType, id string, data json.RawMessage) error

	// ReplaceEntity returns ErrEntityNotFound if the entity doesn't exist
	ReplaceEntity(ctx context.Context, userID string, entityType models.EntityType, id string, data json.RawMessage) error

	// DeleteEntity returns ErrEntityNotFound if the entity doesn't exist
	DeleteEntity(ctx context.Context, userID string, entityType models.EntityType, id string) error
}

// EntityStorage defines interface for entity persistence
type EntityStorage interface {
	EntityTx

	// InTx runs fn in a single transaction, committing only if fn succeeds
	InTx(ctx context.Context, fn func(tx EntityTx) error) error
}
