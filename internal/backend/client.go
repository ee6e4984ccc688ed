// Package backend is the HTTP client for the remote order-management
// backend. It validates the {status, data} envelope once, at this boundary,
// and classifies every failure into the error taxonomy in errors.go.
package backend

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

	"github.com/hotelstaff/orderfeed/internal/enum"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// ErrRejected is returned when the backend answers 2xx with status=false.
var ErrRejected = errors.New("backend rejected the request")

// Client talks to the order-management backend. Safe for concurrent use.
// It never retries: every failure is terminal for that call.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for skipped list entries.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client rooted at baseURL, e.g.
// "https://qr.nukadscan.com/dashboard".
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		baseURL: u,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "orderfeed/1.0",
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the common response wrapper of every backend endpoint.
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// rejected reports whether the envelope carries an explicit status=false.
func (e envelope) rejected() bool {
	return bytes.Equal(bytes.TrimSpace(e.Status), []byte("false"))
}

func listPath(d enum.Domain) string {
	if d == enum.DomainOutdoor {
		return "/app/foods/outdoor/orders"
	}
	return "/app/foods/orders"
}

func detailPath(d enum.Domain, orderID string) string {
	return listPath(d) + "/" + url.PathEscape(orderID)
}

// do executes one request and returns the decoded envelope. Any failure
// before a JSON envelope is obtained is a *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (envelope, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("%s: marshaling request body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: creating request: %w", op, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return envelope{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding body: %w", err)}
	}
	return env, nil
}

// dataArray splits env.Data into its elements. Anything other than an array
// of JSON objects is a contract violation.
func dataArray(op string, env envelope) ([]json.RawMessage, error) {
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, &ContractError{Op: op, Reason: "data is missing"}
	}
	if data[0] != '[' {
		return nil, &ContractError{Op: op, Reason: "data is not an array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ContractError{Op: op, Reason: err.Error()}
	}
	for i, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) == 0 || it[0] != '{' {
			return nil, &ContractError{Op: op, Reason: fmt.Sprintf("data[%d] is not an object", i)}
		}
	}
	return items, nil
}
