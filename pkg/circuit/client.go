package circuit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fevtel/evdash-service-go/pkg/track"
)

// Client talks to the circuit API of a running backend. It is used by the
// CLI commands and only reflects results back to the caller, it keeps no
// state of its own.
type Client struct {
	baseURL string
	hc      *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	ret := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// ListResponse is the payload of the circuit list endpoint.
type ListResponse struct {
	Circuits []Summary `json:"circuits"`
	Active   string    `json:"active"`
}

// AnalyzeRequest carries a raw centerline contour to the analyze endpoint.
type AnalyzeRequest struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Points []track.Point `json:"points"`
}

// HealthResponse is the payload of the backend health probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var ret HealthResponse
	if err := c.get(ctx, "/health", &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var ret ListResponse
	if err := c.get(ctx, "/api/circuit/list", &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) Active(ctx context.Context) (*AnalysisResult, error) {
	var ret AnalysisResult
	if err := c.get(ctx, "/api/circuit/active", &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) Activate(ctx context.Context, id string) (*AnalysisResult, error) {
	var ret AnalysisResult
	if err := c.post(ctx, "/api/circuit/activate/"+id, nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) AnalyzePoints(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	var ret AnalysisResult
	if err := c.post(ctx, "/api/circuit/analyze", req, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("circuit api %s: %s: %s",
			req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
