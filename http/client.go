package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/siterag"
)

// DefaultClientTimeout bounds a single API call. Generation can be slow.
const DefaultClientTimeout = 120 * time.Second

var _ siterag.Asker = (*Client)(nil)

// Client calls a running API server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultClientTimeout},
	}
}

// Health checks that the server is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return siterag.Errorf(siterag.EINVALID, "invalid API URL %q", c.baseURL)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(req, &body); err != nil {
		return err
	}
	if body.Status != "healthy" {
		return siterag.Errorf(siterag.EINTERNAL, "API reports status %q", body.Status)
	}
	return nil
}

// Ask posts the question and history to /ask.
func (c *Client) Ask(ctx context.Context, ask *siterag.AskRequest) (*siterag.Answer, error) {
	payload, err := json.Marshal(ask)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "invalid API URL %q", c.baseURL)
	}
	req.Header.Set("Content-Type", "application/json")

	var answer siterag.Answer
	if err := c.do(req, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return siterag.Errorf(siterag.EINTERNAL, "API unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Detail == "" {
			e.Detail = http.StatusText(resp.StatusCode)
		}
		return siterag.Errorf(statusCode(resp.StatusCode), "%s", e.Detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return siterag.Errorf(siterag.EINTERNAL, "decode response: %v", err)
	}
	return nil
}

// statusCode maps an HTTP status back to an application error code.
func statusCode(status int) string {
	for code, s := range errorStatus {
		if s == status {
			return code
		}
	}
	return siterag.EINTERNAL
}
