package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/sirupsen/logrus"
)

// Client is a typed client for the PoMoyka REST API. Authorization is the
// job of the http.Client's transport; the same type serves both the
// unauthenticated auth calls and the session-backed calls.
type Client struct {
	baseURL         string
	client          *http.Client
	timeout         time.Duration
	listTimeout     time.Duration
	registerTimeout time.Duration
	userAgent       string
	logger          *logrus.Logger
}

// NewClient creates a new API client. A nil httpClient uses a plain client.
func NewClient(cfg config.APIConfig, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		client:          httpClient,
		timeout:         cfg.Timeout,
		listTimeout:     cfg.ListTimeout,
		registerTimeout: cfg.RegisterTimeout,
		userAgent:       cfg.UserAgent,
		logger:          logger,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one request
type call struct {
	method      string
	path        string
	body        interface{} // JSON-encoded unless raw is set
	raw         io.Reader
	contentType string
	timeout     time.Duration
	out         interface{} // Decoded from JSON unless it is *json.RawMessage or *string
}

func (c *Client) do(ctx context.Context, in call) error {
	timeout := in.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	contentType := in.contentType
	switch {
	case in.raw != nil:
		body = in.raw
	case in.body != nil:
		data, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", in.path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.baseURL+in.path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", in.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			c.logger.WithFields(logrus.Fields{
				"method":  in.method,
				"path":    in.path,
				"timeout": timeout.String(),
			}).Warn("Request timed out")
			return fmt.Errorf("%s %s: %w", in.method, in.path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", in.method, in.path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", in.method, in.path, ErrTimeout)
		}
		return fmt.Errorf("failed to read %s response: %w", in.path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":      in.method,
		"path":        in.path,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(req, resp.StatusCode, payload)
	}

	return decode(payload, in.out)
}

func decode(payload []byte, out interface{}) error {
	switch target := out.(type) {
	case nil:
		return nil
	case *json.RawMessage:
		*target = append(json.RawMessage(nil), bytes.TrimSpace(payload)...)
		return nil
	case *string:
		// Plain-text endpoints sometimes answer with a JSON string
		trimmed := bytes.TrimSpace(payload)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			return json.Unmarshal(trimmed, target)
		}
		*target = string(trimmed)
		return nil
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
