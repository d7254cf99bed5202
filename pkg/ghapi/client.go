// Package ghapi issues the GitHub REST calls the tools need. It builds on
// go-github for request construction and response checking, and reports
// failures as compact errmodel errors: upstream for non-2xx answers (with the
// body kept verbatim) and network for everything that prevented a usable
// response.
package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/wilhg/github-mcp/pkg/errmodel"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// NewRepository is the body of POST /user/repos. Every field is always sent.
type NewRepository struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

// Repository is the part of the created repository we read back.
type Repository struct {
	HTMLURL  string `json:"html_url"`
	FullName string `json:"full_name"`
	// Status is the HTTP status of the creating response.
	Status int `json:"-"`
}

// Client creates per-call go-github clients sharing one base transport.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	userAgent string
	transport http.RoundTripper
	timeout   time.Duration
}

type Option func(*Client)

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(u *url.URL) Option { return func(c *Client) { c.baseURL = u } }

func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithTransport replaces the base round tripper. It is still wrapped with
// tracing and bearer auth.
func WithTransport(rt http.RoundTripper) Option { return func(c *Client) { c.transport = rt } }

// WithTimeout sets an overall request timeout. Zero keeps the http.Client default.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// New constructs a Client.
func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{baseURL: u, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL.Path, "/") {
		cp := *c.baseURL
		cp.Path += "/"
		c.baseURL = &cp
	}
	return c
}

// ParseBaseURL parses a configured API root.
func ParseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("api base url must be absolute: " + raw)
	}
	return u, nil
}

// CreateRepository issues exactly one POST /user/repos authenticated with token.
func (c *Client) CreateRepository(ctx context.Context, token string, in NewRepository) (Repository, error) {
	gh := c.github(token)
	req, err := gh.NewRequest(http.MethodPost, "user/repos", in)
	if err != nil {
		return Repository{}, errmodel.Network("bad_request", err)
	}
	res, err := gh.BareDo(ctx, req)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return decodeRepository(bytes.NewReader(accepted.Raw), http.StatusAccepted)
		}
		return Repository{}, classify(err)
	}
	defer func() { _ = res.Body.Close() }()
	return decodeRepository(res.Body, res.StatusCode)
}

// github builds a fresh client so that rate-limit bookkeeping inside go-github
// never short-circuits a later call.
func (c *Client) github(token string) *github.Client {
	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   otelhttp.NewTransport(c.transport),
		},
		Timeout: c.timeout,
	}
	gh := github.NewClient(hc)
	gh.BaseURL = c.baseURL
	if c.userAgent != "" {
		gh.UserAgent = c.userAgent
	}
	return gh
}

func decodeRepository(r io.Reader, status int) (Repository, error) {
	var repo Repository
	if err := json.NewDecoder(r).Decode(&repo); err != nil {
		return Repository{}, errmodel.Network("malformed_response", err)
	}
	if repo.HTMLURL == "" {
		return Repository{}, errmodel.Network("malformed_response", errors.New("response has no html_url"))
	}
	repo.Status = status
	return repo, nil
}

// classify maps go-github errors onto upstream/network categories.
func classify(err error) error {
	if res := errorResponse(err); res != nil {
		body, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return errmodel.Network("read_body", readErr)
		}
		return errmodel.Upstream(res.StatusCode, string(body))
	}
	return errmodel.Network("transport", err)
}

func errorResponse(err error) *http.Response {
	var (
		er  *github.ErrorResponse
		rl  *github.RateLimitError
		arl *github.AbuseRateLimitError
		tfa *github.TwoFactorAuthError
	)
	switch {
	case errors.As(err, &er):
		return er.Response
	case errors.As(err, &rl):
		return rl.Response
	case errors.As(err, &arl):
		return arl.Response
	case errors.As(err, &tfa):
		return tfa.Response
	}
	return nil
}
