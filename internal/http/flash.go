package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "kopi_flash"

type flashKind string

const (
	flashSuccess flashKind = "success"
	flashError   flashKind = "error"
	flashInfo    flashKind = "info"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Kind    flashKind `json:"k"`
	Message string    `json:"m"`
}

func (s *Server) setFlash(w http.ResponseWriter, kind flashKind, msg string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   s.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and expires the cookie.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirectWithFlash records a notice and sends the browser to path.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind flashKind, msg, path string) {
	s.setFlash(w, kind, msg)
	redirect(w, r, path)
}
