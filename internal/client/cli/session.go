package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/client/sync"
)

// loginOptions параметры входа
type loginOptions struct {
	Token  string
	UserID string
}

type tokenInfo struct {
	Subject   string
	ExpiresAt int64
}

// inspectToken reads the claims without verifying the signature.
// The server is the only party that can verify it.
func inspectToken(token string) (tokenInfo, error) {
	var claims gojwt.RegisteredClaims
	if _, _, err := gojwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return tokenInfo{}, err
	}

	info := tokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return info, nil
}

func (c *Cli) runLogin(ctx context.Context, opts loginOptions) error {
	token := opts.Token
	if token == "" {
		var err error
		token, err = c.io.ReadSecret("Access token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}
	if token == "" {
		return errors.New("access token is required")
	}

	auth := &storage.AuthData{
		UserID:      opts.UserID,
		AccessToken: token,
		ServerURL:   c.serverURL,
	}
	if info, err := inspectToken(token); err == nil {
		if auth.UserID == "" {
			auth.UserID = info.Subject
		}
		auth.ExpiresAt = info.ExpiresAt
		if auth.ExpiresAt != 0 && c.now().Unix() >= auth.ExpiresAt {
			return errors.New("access token has expired")
		}
	}
	if auth.UserID == "" {
		return errors.New("user id is unknown: pass --user")
	}

	// Локальные данные принадлежат одному пользователю
	current, err := c.store.GetAuth(ctx)
	switch {
	case err == nil && current.UserID != auth.UserID:
		return fmt.Errorf("signed in as %s. Run 'tracker logout' first", current.UserID)
	case err != nil && !errors.Is(err, storage.ErrAuthNotFound):
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	if err := c.store.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}

	c.io.Printf("✓ Signed in as %s\n", auth.UserID)
	c.engine.Trigger()
	return nil
}

func (c *Cli) runLogout(ctx context.Context, force bool) error {
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	if pending := c.engine.State().Pending; pending > 0 && !force {
		return fmt.Errorf("%d change(s) not synchronized yet. Run 'tracker sync' or use --force to discard them", pending)
	}

	if err := c.engine.WipeLocalState(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Signed out, local data removed")
	return nil
}

// runStatus печатает состояние; online is the result of a fresh health probe
func (c *Cli) runStatus(ctx context.Context, online bool) error {
	view := statusView{Pending: c.engine.State().Pending, Online: online}

	if auth, err := c.requireAuth(ctx); err == nil {
		view.UserID = auth.UserID
		view.ServerURL = auth.ServerURL
		if auth.ExpiresAt != 0 {
			view.Expires = time.Unix(auth.ExpiresAt, 0).Format(time.RFC3339)
			view.Expired = c.now().Unix() >= auth.ExpiresAt
		}
	} else if !errors.Is(err, ErrNotAuthenticated) {
		return err
	}

	ts, err := c.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last sync time: %w", err)
	}
	if ts > 0 {
		view.LastSync = time.Unix(ts, 0).Format(time.RFC3339)
	}

	return render(c.io, statusTemplate, view)
}

func (c *Cli) runSync(ctx context.Context) error {
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	res, err := c.engine.SyncNow(ctx)
	switch {
	case errors.Is(err, sync.ErrOffline):
		c.io.Printf("Server is unreachable. %d change(s) will be sent later.\n", c.engine.State().Pending)
		return nil
	case errors.Is(err, sync.ErrUnauthorized):
		return fmt.Errorf("server rejected the access token. Run 'tracker login' again: %w", err)
	case err != nil && res == nil:
		return fmt.Errorf("sync failed: %w", err)
	}

	if rerr := render(c.io, resultTemplate, res); rerr != nil {
		return rerr
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// runWatch keeps the engine running and prints state transitions until ctx is done.
// monitor drives connectivity, normally the health prober.
func (c *Cli) runWatch(ctx context.Context, monitor func(ctx context.Context)) error {
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	unsubscribe := c.engine.Subscribe(func(s sync.State) {
		c.io.Printf("%s  %-8s pending %d\n", c.now().Format(time.TimeOnly), s.Status, s.Pending)
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor(ctx)
	}()

	err := c.engine.Run(ctx)
	<-done
	return err
}
