package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/log"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, ok := s.sessions.Lookup(cookie.Value); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	s.render(w, r, "login.html", nil)
}

// handleAuthStart begins the code flow. The state token is cached so the
// callback can verify it came from us.
func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := newStateToken()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to generate OAuth state", log.FieldError, err)
		http.Error(w, "sign-in unavailable", http.StatusInternalServerError)
		return
	}
	s.stateCache.Set(state, struct{}{})
	http.Redirect(w, r, s.authenticator.AuthCodeURL(state), http.StatusSeeOther)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if _, ok := s.stateCache.Get(state); !ok {
		s.logger.WarnContext(r.Context(), "OAuth callback with unknown state")
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}
	s.stateCache.Delete(state)

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	identity, err := s.authenticator.Exchange(r.Context(), code)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Code exchange failed", log.FieldError, err)
		http.Error(w, "sign-in failed", http.StatusBadGateway)
		return
	}

	token, err := s.sessions.Start(identity)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to start session", log.FieldError, err)
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, token, s.sessionTTL)

	// Load the user's collection before the first page render
	if _, err := s.store.Refresh(r.Context(), identity.UserID); err != nil {
		s.logger.ErrorContext(r.Context(), "Initial refresh failed",
			log.FieldUserID, identity.UserID,
			log.FieldError, err)
	}

	s.logger.InfoContext(r.Context(), "User signed in",
		log.FieldUserID, identity.UserID,
		log.FieldOperation, log.OpSignIn)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.End(cookie.Value)
	}
	clearSessionCookie(w)

	s.logger.InfoContext(r.Context(), "User signed out",
		log.FieldUserID, id.UserID,
		log.FieldOperation, log.OpSignOut)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func newStateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
