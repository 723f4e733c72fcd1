package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/internal/server/storage"
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements storage.EntityTx on top of a querier
type queries struct {
	q   querier
	now func() time.Time
}

var _ storage.EntityTx = queries{}

// ListEntities returns every entity of the type owned by the user, ordered by id
func (r queries) ListEntities(ctx context.Context, userID string, entityType models.EntityType) ([]json.RawMessage, error) {
	query := `
		SELECT data FROM entities
		WHERE user_id = ? AND type = ?
		ORDER BY id
	`

	rows, err := r.q.QueryContext(ctx, query, userID, string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	items := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		items = append(items, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return items, nil
}

// GetEntity returns a single entity document
func (r queries) GetEntity(ctx context.Context, userID string, entityType models.EntityType, id string) (json.RawMessage, error) {
	query := `SELECT data FROM entities WHERE user_id = ? AND type = ? AND id = ?`

	var data string
	err := r.q.QueryRowContext(ctx, query, userID, string(entityType), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return json.RawMessage(data), nil
}

// InsertEntity creates an entity, failing if the id is taken
func (r queries) InsertEntity(ctx context.Context, userID string, entityType models.EntityType, id string, data json.RawMessage) error {
	query := `
		INSERT INTO entities (user_id, type, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, type, id) DO NOTHING
	`

	now := r.now().Unix()
	result, err := r.q.ExecContext(ctx, query, userID, string(entityType), id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert entity: %w", err)
	}

	return expectRow(result, storage.ErrEntityExists)
}

// ReplaceEntity overwrites an existing entity document
func (r queries) ReplaceEntity(ctx context.Context, userID string, entityType models.EntityType, id string, data json.RawMessage) error {
	query := `
		UPDATE entities SET data = ?, updated_at = ?
		WHERE user_id = ? AND type = ? AND id = ?
	`

	result, err := r.q.ExecContext(ctx, query, string(data), r.now().Unix(), userID, string(entityType), id)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}

	return expectRow(result, storage.ErrEntityNotFound)
}

// DeleteEntity hard-deletes an entity
func (r queries) DeleteEntity(ctx context.Context, userID string, entityType models.EntityType, id string) error {
	query := `DELETE FROM entities WHERE user_id = ? AND type = ? AND id = ?`

	result, err := r.q.ExecContext(ctx, query, userID, string(entityType), id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	return expectRow(result, storage.ErrEntityNotFound)
}

// expectRow returns errNone when the statement affected no rows
func expectRow(result sql.Result, errNone error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return errNone
	}
	return nil
}
