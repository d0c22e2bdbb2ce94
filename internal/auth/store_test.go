package auth

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRecord_Valid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record TokenRecord
		want   bool
	}{
		{
			name:   "not yet expired",
			record: TokenRecord{AccessToken: "a", ExpiresAt: now.Add(time.Minute)},
			want:   true,
		},
		{
			name:   "expires exactly now",
			record: TokenRecord{AccessToken: "a", ExpiresAt: now},
			want:   false,
		},
		{
			name:   "expired",
			record: TokenRecord{AccessToken: "a", ExpiresAt: now.Add(-time.Second)},
			want:   false,
		},
		{
			name:   "refresh failed",
			record: TokenRecord{AccessToken: "a", ExpiresAt: now.Add(time.Hour), Error: TokenErrorRefreshFailed},
			want:   false,
		},
		{
			name:   "no access token",
			record: TokenRecord{ExpiresAt: now.Add(time.Hour)},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	record := RecordFromToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       expiry,
		TokenType:    "Bearer",
	})

	if record.AccessToken != "access" || record.RefreshToken != "refresh" {
		t.Errorf("record = %+v", record)
	}
	if !record.ExpiresAt.Equal(expiry) {
		t.Errorf("ExpiresAt = %v, want %v", record.ExpiresAt, expiry)
	}
	if record.Error != "" {
		t.Errorf("Error = %q, want empty", record.Error)
	}
}

func TestTokenStore_PutGetDelete(t *testing.T) {
	store := NewTokenStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("Get() on empty store returned ok")
	}

	store.Put("s1", TokenRecord{AccessToken: "a1"})
	got, ok := store.Get("s1")
	if !ok || got.AccessToken != "a1" {
		t.Errorf("Get() = %+v, %v", got, ok)
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Error("Get() after Delete() returned ok")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestTokenStore_GetReturnsCopy(t *testing.T) {
	store := NewTokenStore()
	store.Put("s1", TokenRecord{AccessToken: "a1"})

	got, _ := store.Get("s1")
	got.AccessToken = "mutated"

	again, _ := store.Get("s1")
	if again.AccessToken != "a1" {
		t.Errorf("stored record changed through copy: %q", again.AccessToken)
	}
}

func TestTokenStore_Replace(t *testing.T) {
	store := NewTokenStore()

	if store.Replace("gone", TokenRecord{AccessToken: "x"}) {
		t.Error("Replace() on missing session returned true")
	}
	if store.Len() != 0 {
		t.Error("Replace() created a record for a missing session")
	}

	store.Put("s1", TokenRecord{AccessToken: "old"})
	if !store.Replace("s1", TokenRecord{AccessToken: "new"}) {
		t.Error("Replace() on existing session returned false")
	}
	got, _ := store.Get("s1")
	if got.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", got.AccessToken)
	}
}

func TestTokenStore_MarkFailed(t *testing.T) {
	store := NewTokenStore()
	store.Put("s1", TokenRecord{AccessToken: "a", RefreshToken: "r"})

	store.MarkFailed("s1", TokenErrorRefreshFailed)
	store.MarkFailed("missing", TokenErrorRefreshFailed)

	got, _ := store.Get("s1")
	if got.Error != TokenErrorRefreshFailed {
		t.Errorf("Error = %q, want %q", got.Error, TokenErrorRefreshFailed)
	}
	if got.RefreshToken != "r" {
		t.Errorf("RefreshToken = %q, want r", got.RefreshToken)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}
