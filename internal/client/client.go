// Package client talks to the 21-Points REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/domain"
)

type Client struct {
	baseURL string
	token   string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string { return c.token }

// APIError is a non-2xx response, with the problem body when there is one.
type APIError struct {
	StatusCode int
	Problem    domain.Problem
}

func (e *APIError) Error() string {
	msg := e.Problem.Title
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Problem.ErrorKey != "" {
		return fmt.Sprintf("%d %s (%s)", e.StatusCode, msg, e.Problem.ErrorKey)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return resp, err
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

func checkResp(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if json.Unmarshal(raw, &apiErr.Problem) != nil {
		apiErr.Problem.Title = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Authenticate logs in and keeps the returned token for later calls.
func (c *Client) Authenticate(ctx context.Context, login, password string, rememberMe bool) (string, error) {
	var tok domain.TokenResponse
	_, err := c.do(ctx, http.MethodPost, "/api/authenticate", nil,
		domain.LoginRequest{Username: login, Password: password, RememberMe: rememberMe}, &tok)
	if err != nil {
		return "", err
	}
	c.token = tok.IDToken
	return tok.IDToken, nil
}

func (c *Client) Account(ctx context.Context) (*domain.Account, error) {
	var a domain.Account
	if _, err := c.do(ctx, http.MethodGet, "/api/account", nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Users lists the users an entity can be assigned to.
func (c *Client) Users(ctx context.Context) ([]domain.UserRef, error) {
	var users []domain.UserRef
	_, err := c.do(ctx, http.MethodGet, "/api/users", url.Values{"size": {"2000"}}, nil, &users)
	return users, err
}
