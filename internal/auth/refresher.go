package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ExpiryMargin is subtracted from the provider's expires_in so a token is
// never presented within this window of its real expiry.
const ExpiryMargin = 60 * time.Second

// TokenRefresher exchanges a refresh token for a new token record.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (TokenRecord, error)
}

// tokenResponse is the JSON body returned by the token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client     // optional
	Now          func() time.Time // optional, defaults to time.Now
}

// Refresher implements TokenRefresher against the provider's token endpoint.
type Refresher struct {
	client       *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
	now          func() time.Time
}

// NewRefresher creates a Refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Refresher{
		client:       resty.NewWithClient(httpClient),
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		now:          now,
	}
}

// Refresh posts grant_type=refresh_token to the token endpoint using Basic client credentials.
// The returned record expires ExpiryMargin before the provider's expiry. If the
// provider does not rotate the refresh token, the given one is kept.
// Every failure wraps ErrRefreshFailed.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (TokenRecord, error) {
	if refreshToken == "" {
		return TokenRecord{}, fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		Post(r.tokenURL)
	if err != nil {
		return TokenRecord{}, fmt.Errorf("%w: requesting token: %w", ErrRefreshFailed, err)
	}

	if !resp.IsSuccess() {
		return TokenRecord{}, fmt.Errorf("%w: token endpoint returned status %d", ErrRefreshFailed, resp.StatusCode())
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return TokenRecord{}, fmt.Errorf("%w: parsing token response: %w", ErrRefreshFailed, err)
	}

	if body.AccessToken == "" || body.ExpiresIn <= 0 {
		return TokenRecord{}, fmt.Errorf("%w: token response missing access_token or expires_in", ErrRefreshFailed)
	}

	next := body.RefreshToken
	if next == "" {
		next = refreshToken
	}

	lifetime := time.Duration(body.ExpiresIn)*time.Second - ExpiryMargin

	return TokenRecord{
		AccessToken:  body.AccessToken,
		RefreshToken: next,
		ExpiresAt:    r.now().Add(lifetime),
	}, nil
}
