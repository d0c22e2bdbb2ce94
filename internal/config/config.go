// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingCredentials is returned when the Spotify client id or secret is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable")

	// ErrMissingSessionSecret is returned when no session signing secret is set.
	ErrMissingSessionSecret = errors.New("missing SESSION_SECRET environment variable")
)

// Defaults.
const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"
	DefaultTokenURL    = "https://accounts.spotify.com/api/token"
	DefaultAPIURL      = "https://api.spotify.com/v1/"
)

// Config holds application configuration.
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Spotify struct {
		ClientID          string  `mapstructure:"client_id"`
		ClientSecret      string  `mapstructure:"client_secret"`
		RedirectURI       string  `mapstructure:"redirect_uri"`
		TokenURL          string  `mapstructure:"token_url"`
		APIURL            string  `mapstructure:"api_url"`
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
		Burst             int     `mapstructure:"burst"`
	} `mapstructure:"spotify"`
	Session struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"session"`
}

// envBindings maps config keys to the environment variables that may set them.
// The first variable found wins.
var envBindings = map[string][]string{
	"server.addr":                 {"ADDR"},
	"server.log_level":            {"LOG_LEVEL"},
	"spotify.client_id":           {"SPOTIFY_CLIENT_ID", "SPOTIFY_ID"},
	"spotify.client_secret":       {"SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET"},
	"spotify.redirect_uri":        {"SPOTIFY_REDIRECT_URI"},
	"spotify.token_url":           {"SPOTIFY_TOKEN_URL"},
	"spotify.api_url":             {"SPOTIFY_API_URL"},
	"spotify.requests_per_second": {"SPOTIFY_REQUESTS_PER_SECOND"},
	"spotify.burst":               {"SPOTIFY_BURST"},
	"session.secret":              {"SESSION_SECRET", "NEXTAUTH_SECRET"},
	"session.ttl":                 {"SESSION_TTL"},
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from v, binding the environment variables above.
// A nil v uses a fresh viper instance.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("spotify.redirect_uri", DefaultRedirectURI)
	v.SetDefault("spotify.token_url", DefaultTokenURL)
	v.SetDefault("spotify.api_url", DefaultAPIURL)
	v.SetDefault("spotify.requests_per_second", 10.0)
	v.SetDefault("spotify.burst", 5)
	v.SetDefault("session.ttl", 24*time.Hour)
}

// Validate checks that required values are present.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Session.Secret == "" {
		return ErrMissingSessionSecret
	}
	if !strings.HasSuffix(c.Spotify.APIURL, "/") {
		c.Spotify.APIURL += "/"
	}
	return nil
}
