// Package auth keeps a session's Spotify bearer token valid across requests.
package auth

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrAuthRequired is returned when a session has no usable token and the user must sign in again.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRefreshFailed is returned when the provider rejects a refresh token exchange.
	ErrRefreshFailed = errors.New("refresh access token failed")
)

// TokenError marks a token record that can no longer be used.
type TokenError string

// TokenErrorRefreshFailed is set on a record whose refresh was rejected.
const TokenErrorRefreshFailed TokenError = "RefreshAccessTokenError"

// TokenRecord holds the OAuth credentials of one session.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Error        TokenError
}

// RecordFromToken converts a token from the authorization-code exchange into a record.
func RecordFromToken(token *oauth2.Token) TokenRecord {
	return TokenRecord{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}

// Valid reports whether the access token can be presented at now.
func (r TokenRecord) Valid(now time.Time) bool {
	return r.Error == "" && r.AccessToken != "" && now.Before(r.ExpiresAt)
}

// TokenStore holds token records in memory, keyed by session id.
type TokenStore struct {
	mu      sync.RWMutex
	records map[string]TokenRecord
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{records: make(map[string]TokenRecord)}
}

// Put stores the record for a session, replacing any existing one.
func (s *TokenStore) Put(sessionID string, record TokenRecord) {
	s.mu.Lock()
	s.records[sessionID] = record
	s.mu.Unlock()
}

// Get returns a copy of the session's record.
func (s *TokenStore) Get(sessionID string) (TokenRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[sessionID]
	return record, ok
}

// Replace overwrites the session's record only if the session still exists.
// It returns false when the session was removed in the meantime.
func (s *TokenStore) Replace(sessionID string, record TokenRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[sessionID]; !ok {
		return false
	}
	s.records[sessionID] = record
	return true
}

// MarkFailed sets the error on the session's record. Missing sessions are ignored.
func (s *TokenStore) MarkFailed(sessionID string, tokenErr TokenError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[sessionID]; ok {
		record.Error = tokenErr
		s.records[sessionID] = record
	}
}

// Delete removes the session's record.
func (s *TokenStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.records, sessionID)
	s.mu.Unlock()
}

// Len returns the number of stored records.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
