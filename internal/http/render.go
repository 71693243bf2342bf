package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
)

// pageData is the envelope every page template receives.
type pageData struct {
	Title   string
	Active  string
	User    auth.Principal
	Flash   *Flash
	CanEdit bool
	IsAdmin bool
	Now     time.Time
	Data    any
}

// txTable is the argument of the shared "transactions" partial.
type txTable struct {
	Rows    []core.Transaction
	CanEdit bool
}

var templateFuncs = template.FuncMap{
	"rupiah":    core.FormatRupiah,
	"monthName": report.MonthName,
	"months":    report.MonthNames,
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
	"add": func(a, b int) int { return a + b },
	"txTable": func(rows []core.Transaction, canEdit bool) txTable {
		return txTable{Rows: rows, CanEdit: canEdit}
	},
}

// render executes a page template into a buffer so a failing template
// never leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, page pageData) {
	page.Flash = s.popFlash(w, r)
	page.Now = s.clock()
	if page.User.Authenticated() {
		page.CanEdit = page.User.Can(auth.EditLedger)
		page.IsAdmin = page.User.Can(auth.Administer)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, page); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			"error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
