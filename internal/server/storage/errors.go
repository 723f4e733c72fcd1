package storage

import "errors"

// Common storage errors
var (
	// ErrEntityNotFound indicates that the entity does not exist for the user
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityExists indicates that an entity with this id already exists
	ErrEntityExists = errors.New("entity already exists")
)
