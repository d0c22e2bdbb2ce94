package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

var (
	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("OAuth callback missing code")
)

// Scopes requested at sign in.
var Scopes = []string{
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
}

// AuthenticatorConfig configures an Authenticator.
type AuthenticatorConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string       // optional, defaults to the Spotify authorize endpoint
	TokenURL     string       // optional, defaults to the Spotify token endpoint
	HTTPClient   *http.Client // optional, used for the code exchange
}

// Authenticator handles the Spotify OAuth2 authorization code flow.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: cfg.HTTPClient,
	}
}

// AuthURL returns the provider URL the user is redirected to for consent.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange validates the callback request against state and trades its code for a token record.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (TokenRecord, error) {
	values := r.URL.Query()

	if values.Get("state") != state {
		return TokenRecord{}, ErrStateMismatch
	}

	if errMsg := values.Get("error"); errMsg != "" {
		return TokenRecord{}, fmt.Errorf("spotify auth error: %s", errMsg)
	}

	code := values.Get("code")
	if code == "" {
		return TokenRecord{}, ErrMissingCode
	}

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return TokenRecord{}, fmt.Errorf("exchanging code for token: %w", err)
	}

	return RecordFromToken(token), nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
