package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/export"
	"kopimakmur/internal/report"
	"kopimakmur/internal/services"
)

type reportView struct {
	services.ReportView
	MonthName string
	Chart     chartData
	Sorted    []report.CategoryTotal
	Years     []int
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	params, err := ParseReportParams(r.URL.Query(), s.clock())
	if err != nil {
		s.redirectWithFlash(w, r, flashError, msgInvalidFilter, "/laporan")
		return
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	view, err := s.deps.Ledger.Report(ctx, p, params.Month, params.Year)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}

	sorted := append([]report.CategoryTotal(nil), view.Summary.Categories...)
	report.SortByTotalDesc(sorted)

	rv := reportView{
		ReportView: view,
		Chart:      newChartData(view.Series, true),
		Sorted:     sorted,
		Years:      reportYears(s.clock().Year()),
	}
	if view.Month > 0 {
		rv.MonthName = report.MonthName(view.Month)
	}
	s.render(w, r, http.StatusOK, "laporan.html", pageData{
		Title:  "Laporan",
		Active: "laporan",
		User:   p,
		Data:   rv,
	})
}

// handleExportExcel streams the report rows as CSV, which spreadsheet
// applications open directly.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	params, err := ParseReportParams(r.URL.Query(), s.clock())
	if err != nil {
		s.redirectWithFlash(w, r, flashError, msgInvalidFilter, "/laporan")
		return
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	view, err := s.deps.Ledger.Report(ctx, p, params.Month, params.Year)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTransactionsCSV(&buf, view.Transactions); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		s.redirectWithFlash(w, r, flashError, msgLoadFailed, "/laporan")
		return
	}

	slog.InfoContext(r.Context(), "Report exported",
		"username", p.Username,
		"month", params.Month,
		"year", params.Year,
		"rows", len(view.Transactions))

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(params.Month, params.Year)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	s.redirectWithFlash(w, r, flashInfo, msgPDFNotAvailable, "/laporan")
}

// reportYears lists the selectable years, newest first.
func reportYears(current int) []int {
	years := make([]int, 0, 5)
	for y := current; y > current-5; y-- {
		years = append(years, y)
	}
	return years
}
