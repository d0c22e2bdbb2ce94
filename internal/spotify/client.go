// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1/"

// Config configures a Client.
type Config struct {
	BaseURL   string            // optional, defaults to DefaultBaseURL; must end with "/"
	Transport http.RoundTripper // optional, defaults to http.DefaultTransport
	Limiter   *rate.Limiter     // optional outbound request limiter shared by every session
}

// Client wraps the Spotify API client with convenience methods.
// Every method takes the caller's bearer token explicitly.
type Client struct {
	transport http.RoundTripper
	baseURL   string
}

// New creates a new Spotify client wrapper.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Limiter != nil {
		base = &limitTransport{base: base, limiter: cfg.Limiter}
	}

	return &Client{
		transport: &noCacheTransport{base: &statusTransport{base: base}},
		baseURL:   baseURL,
	}
}

// api returns an API client that authorizes every request with bearer.
func (c *Client) api(bearer string) *spotify.Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
	return spotify.New(httpClient, spotify.WithBaseURL(c.baseURL))
}

// User is the signed-in user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// CurrentUser returns the profile of the user owning bearer.
func (c *Client) CurrentUser(ctx context.Context, bearer string) (User, error) {
	ctx, status := withCallStatus(ctx)
	user, err := c.api(bearer).CurrentUser(ctx)
	if err != nil {
		return User{}, wrapError("getting current user", err, status)
	}
	return User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// noCacheTransport marks every request so intermediaries never answer from cache.
type noCacheTransport struct {
	base http.RoundTripper
}

func (t *noCacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	return t.base.RoundTrip(req)
}

// limitTransport waits on a shared limiter before each request.
type limitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

// callStatus holds the last non-2xx HTTP status seen during one API call.
type callStatus struct {
	code atomic.Int32
}

type callStatusKey struct{}

// withCallStatus attaches a fresh callStatus to ctx for statusTransport to fill.
func withCallStatus(ctx context.Context) (context.Context, *callStatus) {
	status := &callStatus{}
	return context.WithValue(ctx, callStatusKey{}, status), status
}

// statusTransport records failed response statuses on the request's callStatus.
// The API client only reports the status found in a JSON error body.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		if status, ok := req.Context().Value(callStatusKey{}).(*callStatus); ok {
			status.code.Store(int32(resp.StatusCode))
		}
	}
	return resp, err
}
