package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	zspotify "github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-insights/internal/auth"
	"github.com/justestif/go-spotify-insights/internal/insights"
	"github.com/justestif/go-spotify-insights/internal/spotify"
)

// UserSource looks up the profile owning an access token.
type UserSource interface {
	CurrentUser(ctx context.Context, bearer string) (spotify.User, error)
}

// InsightsService produces the data served by the API routes.
type InsightsService interface {
	TopTracks(ctx context.Context, sessionID string) (*insights.TopTracksResult, error)
	TopArtists(ctx context.Context, sessionID string) (*zspotify.FullArtistPage, error)
	Summary(ctx context.Context, sessionID string) (*insights.Summary, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth          *auth.Authenticator
	sessions      *SessionStore
	gate          *auth.Gate
	users         UserSource
	insights      InsightsService
	signer        cookieSigner
	secureCookies bool
	logger        *log.Logger
}

// homeResponse is the body of GET /.
type homeResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *userData `json:"user,omitempty"`
}

type userData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Home reports whether the caller is signed in (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	var resp homeResponse
	if session := h.currentSession(r); session != nil {
		resp.Authenticated = true
		resp.User = &userData{ID: session.UserID, Name: session.UserName}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("generating oauth state", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate state")
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing state cookie")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	record, err := h.auth.Exchange(r.Context(), stateCookie.Value, r)
	switch {
	case errors.Is(err, auth.ErrStateMismatch):
		writeError(w, http.StatusBadRequest, "State mismatch")
		return
	case errors.Is(err, auth.ErrMissingCode):
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	case err != nil:
		h.logger.Warn("oauth exchange failed", "err", err)
		writeError(w, http.StatusBadRequest, "Sign in failed")
		return
	}

	user, err := h.users.CurrentUser(r.Context(), record.AccessToken)
	if err != nil {
		h.logger.Error("getting user info", "err", err)
		writeError(w, http.StatusBadGateway, "Failed to get user info")
		return
	}

	session, err := h.sessions.Create(user.ID, user.DisplayName)
	if err != nil {
		h.logger.Error("creating session", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.gate.Store().Put(session.ID, record)

	h.logger.Info("signed in", "user", user.ID)
	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.sessionID(r); ok {
		h.signOut(id)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TopArtists serves the user's short term top artists (GET /top-artists).
func (h *Handlers) TopArtists(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	page, err := h.insights.TopArtists(r.Context(), id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// TopTracks serves the user's top tracks with their analysis (GET /top-tracks).
func (h *Handlers) TopTracks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	result, err := h.insights.TopTracks(r.Context(), id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Summary serves top artists and top tracks in one response (GET /summary).
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	summary, err := h.insights.Summary(r.Context(), id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Healthz reports liveness (GET /healthz).
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentSession returns the signed-in session, or nil.
// A verified cookie whose session has expired drops the leftover tokens.
func (h *Handlers) currentSession(r *http.Request) *Session {
	id, ok := h.sessionID(r)
	if !ok {
		return nil
	}
	session := h.sessions.Get(id)
	if session == nil {
		h.gate.Forget(id)
	}
	return session
}

// requireSession writes 401 and returns false when the caller is not signed in.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := h.currentSession(r)
	if session == nil {
		clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return session.ID, true
}

func (h *Handlers) signOut(id string) {
	h.sessions.Delete(id)
	h.gate.Forget(id)
}

// handleError maps a service error to a response.
// Losing authorization signs the session out so the client starts over.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	switch {
	case errors.Is(err, auth.ErrAuthRequired):
		h.logger.Info("session requires sign in", "err", err)
		h.signOut(sessionID)
		clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, "Authentication required")

	case errors.Is(err, insights.ErrNoTopTracks):
		writeError(w, http.StatusNotFound, "No top tracks found for any time range")

	case errors.Is(err, spotify.ErrUpstream):
		status := spotify.StatusOf(err)
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		h.logger.Warn("spotify request failed", "path", r.URL.Path, "status", status, "err", err)
		writeError(w, status, "Failed to load data from Spotify")

	case errors.Is(err, context.Canceled):
		h.logger.Debug("request cancelled", "path", r.URL.Path)

	default:
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
