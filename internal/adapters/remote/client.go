// Package remote fetches bubbles from the upstream content API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// Endpoint selects which upstream API a Client reads.
type Endpoint int

const (
	// Artifacts is GET /api/artifacts/{slug}/details, whose content uses
	// '$' delimiters.
	Artifacts Endpoint = iota
	// Bubbles is the legacy GET /api/bubbles/{slug}, whose content uses
	// id-tagged markers.
	Bubbles
)

const defaultTimeout = 10 * time.Second

// Client is a BubbleSource backed by the upstream HTTP API.
type Client struct {
	baseURL  string
	userID   string
	endpoint Endpoint
	timeout  time.Duration
	http     *fasthttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds requests made without a context deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoint picks the upstream API. The default is Artifacts.
func WithEndpoint(e Endpoint) Option {
	return func(c *Client) { c.endpoint = e }
}

// NewClient creates a client for the API at baseURL. userID is sent as
// the x-user-id header on artifact requests.
func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		timeout: defaultTimeout,
		http: &fasthttp.Client{
			Name:                "bubbleview",
			ReadTimeout:         defaultTimeout,
			WriteTimeout:        defaultTimeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements usecases.BubbleSource.
func (c *Client) Fetch(ctx context.Context, slug string) (*domain.Bubble, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url(slug))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.endpoint == Artifacts && c.userID != "" {
		req.Header.Set("x-user-id", c.userID)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		log.GlobalWarnCtx(ctx, "upstream request failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	status := resp.StatusCode()
	log.GlobalDebugCtx(ctx, "upstream response", "slug", slug, "status", status, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case status == fasthttp.StatusNotFound:
		return nil, domain.ErrBubbleNotFound
	case status != fasthttp.StatusOK:
		return nil, fmt.Errorf("%w: upstream status %d", domain.ErrFetchFailed, status)
	}

	return c.decode(slug, resp.Body())
}

func (c *Client) url(slug string) string {
	escaped := url.PathEscape(slug)
	if c.endpoint == Bubbles {
		return c.baseURL + "/api/bubbles/" + escaped
	}
	return c.baseURL + "/api/artifacts/" + escaped + "/details"
}

func (c *Client) decode(slug string, body []byte) (*domain.Bubble, error) {
	if c.endpoint == Bubbles {
		var r legacyResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}
		return r.toDomain(slug), nil
	}

	var r artifactResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if r.Artifact == nil {
		return nil, domain.ErrBubbleNotFound
	}
	return r.Artifact.toDomain(slug), nil
}
