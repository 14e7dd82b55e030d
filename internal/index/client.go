package index

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lunarway/yente/internal/xerrors"
)

// Client is the search-engine boundary the API handlers talk to.
// Implementations return *APIError for engine-reported failures and
// *TransportError for connectivity failures; anything else is a bug.
type Client interface {
	Search(ctx context.Context, dataset, query string) (json.RawMessage, error)
	Statements(ctx context.Context, params url.Values) (json.RawMessage, error)
	Ping(ctx context.Context) error
}

type HTTPClient struct {
	base string
	hc   *http.Client
}

// NewHTTPClient builds a client against the engine base URL.
// Timeout bounds a single call; retries belong to the engine side.
func NewHTTPClient(base string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Search(ctx context.Context, dataset, query string) (json.RawMessage, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	return c.get(ctx, "/indexes/"+url.PathEscape(dataset)+"/search", q)
}

func (c *HTTPClient) Statements(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return c.get(ctx, "/statements", params)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/", nil)
	return err
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, xerrors.Wrap(err, "build index request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		// never reached the engine (or never got a response back)
		return nil, &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    engineMessage(body, resp.Status),
		}
	}

	return json.RawMessage(body), nil
}

// engineMessage pulls a human-readable message out of an engine error
// body, falling back to the HTTP status line.
func engineMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		case payload.Detail != "":
			return payload.Detail
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) <= 200 {
		return s
	}
	return fallback
}
