package storage

import (
	"context"
)

// AuthStorage defines interface for storing the bearer credential on client.
// The token is supplied out of band (see `tracker login`).
type AuthStorage interface {
	// SaveAuth stores authentication data
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data
	DeleteAuth(ctx context.Context) error
}

// AuthData represents authentication information in storage
type AuthData struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	ServerURL   string `json:"server_url,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"` // 0 = без срока действия
}
