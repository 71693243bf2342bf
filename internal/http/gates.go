package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/services"
)

// principalHandler is a handler that has passed the access gate.
type principalHandler func(w http.ResponseWriter, r *http.Request, p auth.Principal)

func (s *Server) principal(r *http.Request) (auth.Principal, bool) {
	p, err := s.deps.Sessions.Read(r)
	if err != nil {
		return auth.Principal{}, false
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()
	current, err := s.deps.Auth.Refresh(ctx, p)
	if errors.Is(err, auth.ErrNoSession) {
		slog.InfoContext(r.Context(), "Session refers to a removed account", "username", p.Username)
		return auth.Principal{}, false
	}
	if err != nil {
		// The page's own reads report the outage; the cookie identity
		// stands in until then.
		slog.WarnContext(r.Context(), "Session refresh failed", "username", p.Username, "error", err)
		return p, true
	}
	return current, true
}

// deniedMessage is the notice shown when p lacks c.
func deniedMessage(c auth.Capability) string {
	if c == auth.EditLedger {
		return msgReadOnly
	}
	return msgAdminOnly
}

// page gates a UI route: unauthenticated users go to the login page,
// principals without c go to their landing page. Both get a notice.
func (s *Server) page(c auth.Capability, next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.principal(r)
		if !ok {
			s.redirectWithFlash(w, r, flashError, msgLoginRequired, "/login")
			return
		}
		if !p.Can(c) {
			slog.WarnContext(r.Context(), "Access denied",
				"username", p.Username,
				"role", p.Role,
				"capability", c,
				"path", r.URL.Path)
			s.redirectWithFlash(w, r, flashError, deniedMessage(c), p.LandingPath())
			return
		}
		next(w, r, p)
	}
}

// mutation gates a JSON mutation route with 401/403 envelopes.
func (s *Server) mutation(c auth.Capability, next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.principal(r)
		if !ok {
			FailureResponse(http.StatusUnauthorized, msgLoginRequired).Write(w)
			return
		}
		if !p.Can(c) {
			FailureResponse(http.StatusForbidden, deniedMessage(c)).Write(w)
			return
		}
		next(w, r, p)
	}
}

// api gates a JSON read route on authentication only.
func (s *Server) api(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.principal(r)
		if !ok {
			ErrorResponse(http.StatusUnauthorized, msgLoginRequired).Write(w)
			return
		}
		next(w, r, p)
	}
}

// loadFailed handles a read error on a UI route.
func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, p auth.Principal, err error) {
	if errors.Is(err, services.ErrForbidden) {
		s.redirectWithFlash(w, r, flashError, msgAdminOnly, p.LandingPath())
		return
	}
	slog.ErrorContext(r.Context(), "Failed to load page data",
		"path", r.URL.Path,
		"username", p.Username,
		"error", err)
	s.redirectWithFlash(w, r, flashError, msgLoadFailed, "/login")
}
