// Package apiclient is the request client every other component uses to
// reach the association's backend API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cicbolivia/portal/internal/apperr"
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/tokenstore"
	"github.com/cicbolivia/portal/internal/utils"
	"github.com/go-resty/resty/v2"
)

// ErrNoHost is returned for every request issued through a client whose
// base URL has no host, e.g. the bare "http://" placeholder.
var ErrNoHost = errors.New("base URL has no host")

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every relative path.
	BaseURL string
	// Headers are sent with every request in addition to the JSON defaults.
	Headers map[string]string
	// Timeout bounds each request. Default 30s.
	Timeout time.Duration
	// Token, when set, supplies a bearer token for each request.
	Token tokenstore.Reader
	// Name identifies the client in logs.
	Name string
}

// Client issues JSON requests against a fixed base URL.
type Client struct {
	client  *resty.Client
	baseURL string
	hostErr error
	name    string
}

// New builds a Client. A base URL without a host is accepted; requests
// through such a client fail with a transport error.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "api"
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		name:    cfg.Name,
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil {
		c.hostErr = fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	} else if u.Host == "" {
		c.hostErr = fmt.Errorf("%w: %q", ErrNoHost, cfg.BaseURL)
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeaders(cfg.Headers)

	if cfg.Token != nil {
		tokens := cfg.Token
		rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			token, err := tokens.Token(r.Context())
			if err != nil {
				// A missing token never blocks a request.
				logger.Get().Warn().Err(err).Str("client", c.name).Msg("Could not read access token")
				return nil
			}
			if token != "" {
				r.SetAuthToken(token)
				logger.Get().Debug().
					Str("client", c.name).
					Str("token_fingerprint", utils.Fingerprint(token)).
					Msg("Attached bearer token")
			}
			return nil
		})
	}

	c.client = rc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET for path and decodes the JSON body into out. out may be
// nil or a *json.RawMessage.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST for path with body encoded as JSON and decodes the
// response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.Get()
	if c.hostErr != nil {
		log.Error().Err(c.hostErr).Str("client", c.name).Str("path", path).Msg("Request not sent")
		return apperr.Transport(c.hostErr)
	}

	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		log.Error().
			Err(err).
			Str("client", c.name).
			Str("method", method).
			Str("path", path).
			Msg("Request failed")
		return apperr.Transport(err)
	}

	log.Debug().
		Str("client", c.name).
		Str("method", method).
		Str("url", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if !resp.IsSuccess() {
		return apperr.HTTP(resp.StatusCode())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperr.Transport(fmt.Errorf("failed to decode response from %s: %w", path, err))
	}
	return nil
}
