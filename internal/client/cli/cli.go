// Package cli implements the tracker command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/tracker/internal/client/data"
	"github.com/iudanet/tracker/internal/client/iocli"
	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/client/sync"
)

// shortIDLen is how many id characters listings show
const shortIDLen = 8

var (
	// ErrNotAuthenticated is returned by commands that need a stored token
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'tracker login' first")
	// ErrAmbiguousID is returned when an id prefix matches several entities
	ErrAmbiguousID = errors.New("ambiguous id")
)

// LocalStore is the client store as the CLI sees it
type LocalStore interface {
	storage.Store
	storage.AuthStorage
}

// Cli holds the services behind the tracker commands
type Cli struct {
	io     iocli.IO
	store  LocalStore
	engine *sync.Engine
	tasks  *data.TaskService
	habits *data.HabitService
	now    func() time.Time

	serverURL string
}

// New creates the command set over already wired services
func New(io iocli.IO, store LocalStore, engine *sync.Engine, tasks *data.TaskService, habits *data.HabitService) *Cli {
	return &Cli{
		io:     io,
		store:  store,
		engine: engine,
		tasks:  tasks,
		habits: habits,
		now:    time.Now,
	}
}

// requireAuth возвращает сохраненные данные аутентификации
func (c *Cli) requireAuth(ctx context.Context) (*storage.AuthData, error) {
	auth, err := c.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return auth, nil
}

// resolveID expands a unique id prefix
func resolveID(ids []string, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("id is required")
	}

	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", data.ErrNotFoundLocally, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w %q matches %d entries", ErrAmbiguousID, prefix, len(found))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
