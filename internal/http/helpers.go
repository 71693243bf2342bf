package http

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// readTimeout bounds the store reads of a single request.
const readTimeout = 7 * time.Second

func withReadTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), readTimeout)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
