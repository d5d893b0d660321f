// Package userclient is the typed caller-side contract for the user
// lifecycle API. Non-success responses are normalized into errors of the
// form "{status} {details}" because the backend's error bodies are not
// guaranteed to share one schema.
package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brightprep/brightprep-be/internal/models"
	"github.com/brightprep/brightprep-be/internal/models/dto"
)

// Client calls the user lifecycle endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithToken sets the bearer credential attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the given base URL.
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// UpsertOnSignIn creates or refreshes the account for the signed-in identity.
func (c *Client) UpsertOnSignIn(ctx context.Context, req dto.SignInRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/users/signin", req, &user)
	return user, err
}

// GetByFirebaseUID fetches the account, active or soft-deleted.
func (c *Client) GetByFirebaseUID(ctx context.Context, firebaseUID string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(firebaseUID), nil, &user)
	return user, err
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, firebaseUID string, req dto.UpdateProfileRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(firebaseUID), req, &user)
	return user, err
}

// UpdateRole changes the account role; the caller must hold the owner role.
func (c *Client) UpdateRole(ctx context.Context, firebaseUID string, role models.Role) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(firebaseUID)+"/role",
		dto.UpdateRoleRequest{Role: string(role)}, &user)
	return user, err
}

// SoftDelete marks the account inactive.
func (c *Client) SoftDelete(ctx context.Context, firebaseUID string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(firebaseUID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError turns a non-success response into "{status} {details}". Details
// come from the body's details, error, or message field, in that priority,
// falling back to the raw body.
func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	details := strings.TrimSpace(string(raw))

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		for _, field := range []string{"details", "error", "message"} {
			if value, ok := parsed[field]; ok {
				if text := stringify(value); text != "" {
					details = text
					break
				}
			}
		}
	}

	return fmt.Errorf("%d %s", resp.StatusCode, details)
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
}
