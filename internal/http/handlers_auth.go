package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"kopimakmur/internal/auth"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.principal(r); ok {
		redirect(w, r, p.LandingPath())
		return
	}
	redirect(w, r, "/login")
}

// handleLoginPage always renders, even with a session, so a failing
// landing page can send users back here without a redirect loop.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", pageData{Title: "Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, msgBadCredentials, "/login")
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	p, err := s.deps.Auth.Authenticate(ctx, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.WarnContext(r.Context(), "Login failed",
			"username", username,
			"client_ip", s.detector.ExtractClientIP(r))
		s.redirectWithFlash(w, r, flashError, msgBadCredentials, "/login")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Login lookup failed", "username", username, "error", err)
		s.redirectWithFlash(w, r, flashError, msgLoadFailed, "/login")
		return
	}

	if err := s.deps.Sessions.Issue(w, p); err != nil {
		slog.ErrorContext(r.Context(), "Failed to issue session", "username", username, "error", err)
		s.redirectWithFlash(w, r, flashError, msgLoadFailed, "/login")
		return
	}

	slog.InfoContext(r.Context(), "Login succeeded",
		"username", p.Username,
		"role", p.Role,
		"seed", p.Seed)

	notice := fmt.Sprintf(msgWelcome, p.Username)
	if p.Seed {
		notice = msgLoginSeed
	}
	s.redirectWithFlash(w, r, flashSuccess, notice, p.LandingPath())
}

func (s *Server) handleLoginLimited(w http.ResponseWriter, r *http.Request) {
	s.redirectWithFlash(w, r, flashError, msgTooManyAttempts, "/login")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.principal(r); ok {
		slog.InfoContext(r.Context(), "Logout", "username", p.Username)
	}
	s.deps.Sessions.Clear(w)
	s.redirectWithFlash(w, r, flashInfo, msgLoggedOut, "/login")
}
