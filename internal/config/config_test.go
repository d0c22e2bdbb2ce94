package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// clearEnv unsets every variable Load looks at for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, e := range envs {
			t.Setenv(e, "")
			os.Unsetenv(e)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "signing")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Spotify.TokenURL != DefaultTokenURL {
		t.Errorf("TokenURL = %q, want %q", cfg.Spotify.TokenURL, DefaultTokenURL)
	}
	if cfg.Spotify.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.Spotify.APIURL, DefaultAPIURL)
	}
	if cfg.Spotify.RedirectURI != DefaultRedirectURI {
		t.Errorf("RedirectURI = %q, want %q", cfg.Spotify.RedirectURI, DefaultRedirectURI)
	}
	if cfg.Spotify.RequestsPerSecond != 10 {
		t.Errorf("RequestsPerSecond = %v, want 10", cfg.Spotify.RequestsPerSecond)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Spotify.ClientID != "id" || cfg.Spotify.ClientSecret != "secret" || cfg.Session.Secret != "signing" {
		t.Errorf("credentials not loaded: %+v", cfg.Spotify)
	}
}

func TestLoad_AlternateEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_ID", "legacy-id")
	t.Setenv("SPOTIFY_SECRET", "legacy-secret")
	t.Setenv("NEXTAUTH_SECRET", "legacy-signing")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SPOTIFY_API_URL", "http://localhost:9999/v1")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Spotify.ClientID != "legacy-id" {
		t.Errorf("ClientID = %q, want legacy-id", cfg.Spotify.ClientID)
	}
	if cfg.Session.Secret != "legacy-signing" {
		t.Errorf("Secret = %q, want legacy-signing", cfg.Session.Secret)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("TTL = %v, want 2h", cfg.Session.TTL)
	}
	if cfg.Spotify.APIURL != "http://localhost:9999/v1/" {
		t.Errorf("APIURL = %q, want trailing slash", cfg.Spotify.APIURL)
	}
}

func TestLoad_MissingValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"nothing set", nil, ErrMissingCredentials},
		{"id missing", map[string]string{"SPOTIFY_CLIENT_SECRET": "s", "SESSION_SECRET": "x"}, ErrMissingCredentials},
		{"secret missing", map[string]string{"SPOTIFY_CLIENT_ID": "i", "SESSION_SECRET": "x"}, ErrMissingCredentials},
		{"session secret missing", map[string]string{"SPOTIFY_CLIENT_ID": "i", "SPOTIFY_CLIENT_SECRET": "s"}, ErrMissingSessionSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(viper.New())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "SPOTIFY_CLIENT_ID=file-id\nSPOTIFY_CLIENT_SECRET=file-secret\nSESSION_SECRET=file-signing\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SPOTIFY_CLIENT_ID")
		os.Unsetenv("SPOTIFY_CLIENT_SECRET")
		os.Unsetenv("SESSION_SECRET")
	})

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spotify.ClientID != "file-id" {
		t.Errorf("ClientID = %q, want file-id", cfg.Spotify.ClientID)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.env")
	if err := LoadEnvFile(path); err != nil {
		t.Errorf("LoadEnvFile() error = %v, want nil for missing file", err)
	}
}
