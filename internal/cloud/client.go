package cloud

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

	"github.com/google/uuid"

	"github.com/five82/matchday/internal/game"
)

var (
	// ErrDisabled is returned by every call when no endpoint is configured.
	ErrDisabled = errors.New("cloud sync disabled")
	// ErrRemote reports an endpoint response with success=false.
	ErrRemote = errors.New("sync endpoint error")
)

// Gateway defines the sheet endpoint operations. It is implemented by *Client
// and can be replaced in tests.
type Gateway interface {
	Enabled() bool
	Pull(ctx context.Context) (*game.CloudSnapshot, error)
	Push(ctx context.Context, payload PushPayload) (string, error)
	FetchCalendar(ctx context.Context) ([]game.CalendarEvent, error)
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to the spreadsheet-backed sync endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "matchday/0.1"
	requestTimeout   = 20 * time.Second
	maxResponseBytes = 4 << 20
)

// NewClient builds a Client for syncURL. An empty URL yields a disabled
// client rather than an error.
func NewClient(syncURL string) (*Client, error) {
	c := &Client{
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}
	trimmed := strings.TrimSpace(syncURL)
	if trimmed == "" {
		return c, nil
	}
	endpoint, err := parseEndpoint(trimmed)
	if err != nil {
		return nil, err
	}
	c.endpoint = endpoint
	return c, nil
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != nil
}

// Pull retrieves the full cloud document.
func (c *Client) Pull(ctx context.Context) (*game.CloudSnapshot, error) {
	var payload documentPayload
	if err := c.get(ctx, actionGetAll, &payload); err != nil {
		return nil, err
	}
	return payload.snapshot(), nil
}

// FetchCalendar retrieves only the calendar events.
func (c *Client) FetchCalendar(ctx context.Context) ([]game.CalendarEvent, error) {
	var events []game.CalendarEvent
	if err := c.get(ctx, actionGetCalendar, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []game.CalendarEvent{}
	}
	return events, nil
}

// Push sends the syncAll document and returns the endpoint's timestamp.
func (c *Client) Push(ctx context.Context, payload PushPayload) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	body, err := json.Marshal(pushRequest{Action: actionSyncAll, Data: payload})
	if err != nil {
		return "", fmt.Errorf("encode push: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var result pushResult
	if len(data) > 0 {
		// The timestamp is informational; a missing or odd data field is not a failure.
		_ = json.Unmarshal(data, &result)
	}
	return result.Timestamp, nil
}

func (c *Client) get(ctx context.Context, action string, dest any) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	reqURL := *c.endpoint
	values := reqURL.Query()
	values.Set("action", action)
	reqURL.RawQuery = values.Encode()
	data, err := c.do(ctx, http.MethodGet, &reqURL, nil)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("decode response: missing data")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// do performs the request and returns the data field of a successful envelope.
func (c *Client) do(ctx context.Context, method string, reqURL *url.URL, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Apps Script endpoints reject CORS preflights, so bodies go out as text/plain.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sync %s returned status %d", method, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = "no error message"
		}
		return nil, fmt.Errorf("%w: %s", ErrRemote, msg)
	}
	if bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, nil
	}
	return env.Data, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse sync url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse sync url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse sync url %q: missing host", raw)
	}
	u.Fragment = ""
	return u, nil
}
