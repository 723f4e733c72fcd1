package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/tracker/internal/models"
	"github.com/iudanet/tracker/pkg/api"
)

// DefaultTimeout is the per-request timeout when none is configured
const DefaultTimeout = 15 * time.Second

// Remote is the remote API as seen by the sync engine.
// Payloads are the queue item payloads, passed through as JSON.
type Remote interface {
	List(ctx context.Context, entityType models.EntityType) ([]json.RawMessage, error)
	Create(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error
	Update(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error
	Delete(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error
	Toggle(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error
	Restore(ctx context.Context, entityType models.EntityType, id string) error
	Purge(ctx context.Context, entityType models.EntityType, id string) error
}

// TokenSource returns the bearer token for the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token returns the token
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

var _ Remote = (*Client)(nil)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	baseURL    string
}

// NewClient создает новый API клиент.
// tokens may be nil for unauthenticated use (health probing).
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Health checks that the server is reachable and healthy
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, api.BasePath+"/health", nil, &resp, false); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// List returns the full server state of one collection
func (c *Client) List(ctx context.Context, entityType models.EntityType) ([]json.RawMessage, error) {
	var resp api.ListResponse
	if err := c.doRequest(ctx, http.MethodGet, collectionPath(entityType), nil, &resp, true); err != nil {
		return nil, fmt.Errorf("list %s request failed: %w", entityType.Collection(), err)
	}
	if resp.Items == nil {
		resp.Items = []json.RawMessage{}
	}
	return resp.Items, nil
}

// Create posts a new entity. The client-issued id is merged into the payload.
func (c *Client) Create(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
	body, err := withID(payload, id)
	if err != nil {
		return err
	}
	if err := c.doRequest(ctx, http.MethodPost, collectionPath(entityType), body, nil, true); err != nil {
		return fmt.Errorf("create %s request failed: %w", entityType, err)
	}
	return nil
}

// Update sends a partial update
func (c *Client) Update(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
	if err := c.doRequest(ctx, http.MethodPatch, entityPath(entityType, id), rawBody(payload), nil, true); err != nil {
		return fmt.Errorf("update %s request failed: %w", entityType, err)
	}
	return nil
}

// Delete removes a task or trashes a habit.
// A habit delete payload carries the day of the local delete as ?date=.
func (c *Client) Delete(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
	path := entityPath(entityType, id)
	if len(payload) > 0 {
		var trash models.TrashPayload
		if err := json.Unmarshal(payload, &trash); err != nil {
			return fmt.Errorf("failed to decode delete payload: %w", err)
		}
		if trash.Date != "" {
			path += "?" + url.Values{api.DateParam: {trash.Date}}.Encode()
		}
	}
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, true); err != nil {
		return fmt.Errorf("delete %s request failed: %w", entityType, err)
	}
	return nil
}

// Toggle flips task completion or a habit day. The payload is forwarded as is.
func (c *Client) Toggle(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) error {
	path := entityPath(entityType, id) + "/toggle"
	if err := c.doRequest(ctx, http.MethodPost, path, rawBody(payload), nil, true); err != nil {
		return fmt.Errorf("toggle %s request failed: %w", entityType, err)
	}
	return nil
}

// Restore takes a habit out of the trash
func (c *Client) Restore(ctx context.Context, entityType models.EntityType, id string) error {
	path := entityPath(entityType, id) + "/restore"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil, true); err != nil {
		return fmt.Errorf("restore %s request failed: %w", entityType, err)
	}
	return nil
}

// Purge permanently deletes a trashed habit
func (c *Client) Purge(ctx context.Context, entityType models.EntityType, id string) error {
	path := entityPath(entityType, id) + "?" + url.Values{api.PermanentParam: {"true"}}.Encode()
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, true); err != nil {
		return fmt.Errorf("purge %s request failed: %w", entityType, err)
	}
	return nil
}

func collectionPath(entityType models.EntityType) string {
	return api.BasePath + "/" + entityType.Collection()
}

func entityPath(entityType models.EntityType, id string) string {
	return collectionPath(entityType) + "/" + url.PathEscape(id)
}

// rawBody returns payload as a request body; an empty payload becomes {}
func rawBody(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 {
		return json.RawMessage("{}")
	}
	return payload
}

// withID merges "id" into a JSON object payload
func withID(payload json.RawMessage, id string) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode create payload: %w", err)
		}
	}

	idJSON, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to encode id: %w", err)
	}
	fields["id"] = idJSON

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create payload: %w", err)
	}
	return body, nil
}

// doRequest выполняет HTTP запрос и классифицирует ошибку
func (c *Client) doRequest(ctx context.Context, method, path string, body json.RawMessage, result any, authenticated bool) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		if c.tokens == nil {
			return &Error{Kind: KindUnauthorized, Err: errors.New("no token source configured")}
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return &Error{Kind: KindUnauthorized, Err: fmt.Errorf("failed to get access token: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransient, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransient, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Kind: KindForStatus(resp.StatusCode), StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Kind: KindTransient, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}
