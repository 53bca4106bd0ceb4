package kv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"task-tracker/internal/errors"
)

// Client talks to a Server. It registers lazily on first use.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Register obtains an API token from the server.
func (c *Client) Register(ctx context.Context) error {
	body, status, err := c.do(ctx, http.MethodGet, c.baseURL+"/register", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK || body == "" {
		return errors.NewTransportError("register", fmt.Errorf("unexpected status %d", status))
	}
	c.token = body
	return nil
}

// Put stores value under key.
func (c *Client) Put(ctx context.Context, key, value string) error {
	if err := c.ensureRegistered(ctx); err != nil {
		return err
	}
	_, status, err := c.do(ctx, http.MethodPost, c.keyURL("save", key), strings.NewReader(value))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errors.NewTransportError("put "+key, fmt.Errorf("unexpected status %d", status))
	}
	return nil
}

// Load returns the value stored under key. A missing key is a NotFound error.
func (c *Client) Load(ctx context.Context, key string) (string, error) {
	if err := c.ensureRegistered(ctx); err != nil {
		return "", err
	}
	body, status, err := c.do(ctx, http.MethodGet, c.keyURL("load", key), nil)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return "", errors.NewNotFoundError("key", key)
	default:
		return "", errors.NewTransportError("load "+key, fmt.Errorf("unexpected status %d", status))
	}
}

func (c *Client) ensureRegistered(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	return c.Register(ctx)
}

func (c *Client) keyURL(action, key string) string {
	return fmt.Sprintf("%s/%s/%s?%s=%s", c.baseURL, action, url.PathEscape(key), TokenParam, url.QueryEscape(c.token))
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return "", 0, errors.NewTransportError("build request", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, errors.NewTransportError(method+" "+target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, errors.NewTransportError("read response", err)
	}
	return string(data), resp.StatusCode, nil
}
