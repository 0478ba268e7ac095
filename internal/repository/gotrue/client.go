// internal/repository/gotrue/client.go
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"qarilive-service/internal/domain/account"
	xerrors "qarilive-service/internal/pkg/errors"
	"qarilive-service/internal/pkg/linkheader"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 100
	maxBodyBytes    = 10 << 20
)

// TokenSource returns the bearer sent to the admin API on every call.
type TokenSource func() (string, error)

// StaticToken always returns the same bearer.
func StaticToken(token string) TokenSource {
	return func() (string, error) { return token, nil }
}

type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

// Client talks to the identity provider's admin user API.
type Client struct {
	baseURL    string
	pageSize   int
	timeout    time.Duration
	token      TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, token TokenSource, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   cfg.PageSize,
		timeout:    cfg.Timeout,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

type usersPage struct {
	Users []account.User `json:"users"`
}

// ListAllUsers follows rel="next" links until none is left. Any failing page
// discards everything fetched so far.
func (c *Client) ListAllUsers(ctx context.Context) ([]account.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	next := c.baseURL + "/users?per_page=" + strconv.Itoa(c.pageSize)
	seen := make(map[string]bool)
	var all []account.User

	for next != "" {
		if seen[next] {
			c.logger.Warn("identity listing returned a repeated next link", zap.String("url", next))
			break
		}
		seen[next] = true

		resp, body, err := c.do(ctx, "list users", http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}

		users, err := decodeUsers(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode users page: %w", err)
		}
		all = append(all, users...)

		next, err = resolveNext(next, linkheader.Next(resp.Header.Get("Link")))
		if err != nil {
			return nil, err
		}
	}

	return all, nil
}

// decodeUsers accepts a bare array or an object wrapping it under "users".
func decodeUsers(body []byte) ([]account.User, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var users []account.User
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return nil, err
		}
		return users, nil
	}

	var page usersPage
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	return page.Users, nil
}

func resolveNext(current, next string) (string, error) {
	if next == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// InviteUser sends an invite. The provider does not always echo the new id,
// so the returned user may have an empty ID.
func (c *Client) InviteUser(ctx context.Context, email string) (*account.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, body, err := c.do(ctx, "invite user", http.MethodPost, c.baseURL+"/users/invite", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	var user account.User
	if err := json.Unmarshal(body, &user); err != nil {
		// a non-user reply still means the invite went through
		c.logger.Debug("invite reply carried no user record", zap.Error(err))
		return &account.User{Email: email}, nil
	}
	if user.Email == "" {
		user.Email = email
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*account.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.getUser(ctx, id)
}

func (c *Client) getUser(ctx context.Context, id string) (*account.User, error) {
	_, body, err := c.do(ctx, "get user", http.MethodGet, c.userURL(id), nil)
	if err != nil {
		return nil, err
	}

	var user account.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// UpdateUser reads the current record and merges the patch into its metadata
// before writing, so keys the patch does not name survive.
func (c *Client) UpdateUser(ctx context.Context, id string, patch account.Patch) (*account.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	current, err := c.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := &account.User{
		ID:           current.ID,
		Email:        current.Email,
		Role:         current.Role,
		UserMetadata: mergeMeta(current.UserMetadata, patch.UserMetadata),
		AppMetadata:  mergeMeta(current.AppMetadata, patch.AppMetadata),
		CreatedAt:    current.CreatedAt,
		LastLogin:    current.LastLogin,
		ConfirmedAt:  current.ConfirmedAt,
	}
	if merged.ID == "" {
		merged.ID = id
	}

	payload := map[string]interface{}{
		"user_metadata": merged.UserMetadata,
		"app_metadata":  merged.AppMetadata,
	}
	_, body, err := c.do(ctx, "update user", http.MethodPut, c.userURL(id), payload)
	if err != nil {
		return nil, err
	}

	var updated account.User
	if err := json.Unmarshal(body, &updated); err != nil || updated.ID == "" {
		return merged, nil
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, _, err := c.do(ctx, "delete user", http.MethodDelete, c.userURL(id), nil)
	return err
}

// DisableUser sets app_metadata.banned; the rest of app_metadata is kept.
func (c *Client) DisableUser(ctx context.Context, id string) (*account.User, error) {
	return c.UpdateUser(ctx, id, account.Patch{
		AppMetadata: map[string]interface{}{"banned": true},
	})
}

// FindUserIDByEmail scans the full listing; returns "" when nobody matches.
func (c *Client) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	users, err := c.ListAllUsers(ctx)
	if err != nil {
		return "", err
	}

	want := strings.ToLower(strings.TrimSpace(email))
	for _, u := range users {
		if strings.ToLower(strings.TrimSpace(u.Email)) == want {
			return u.ID, nil
		}
	}
	return "", nil
}

func mergeMeta(base, patch map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func (c *Client) userURL(id string) string {
	return c.baseURL + "/users/" + url.PathEscape(id)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// do sends one request and returns the body of a 2xx reply. Anything else
// becomes an *UpstreamError carrying the provider's status and body.
func (c *Client) do(ctx context.Context, op, method, target string, payload interface{}) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to obtain admin token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, xerrors.FromContext(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, xerrors.FromContext(fmt.Errorf("%s: reading reply: %w", op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("identity admin call failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil, &xerrors.UpstreamError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	return resp, body, nil
}
