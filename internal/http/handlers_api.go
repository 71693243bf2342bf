package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/services"
)

// PlaceholderHeader marks sample data served in place of an empty result.
const PlaceholderHeader = "X-Placeholder-Data"

type trendResponse struct {
	Labels  []string `json:"labels"`
	Revenue []int64  `json:"revenue"`
	Expense []int64  `json:"expense"`
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	stats, err := s.deps.Ledger.Stats(ctx, p)
	if err != nil {
		apiFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(stats).Write(w)
}

func (s *Server) handleExpenseDistribution(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	dist, placeholder, err := s.deps.Ledger.ExpenseDistribution(ctx, p)
	if err != nil {
		apiFailed(w, r, err)
		return
	}
	resp := NewJSONResponse().Body(dist)
	if placeholder {
		resp.Header(PlaceholderHeader, "true")
	}
	resp.Write(w)
}

func (s *Server) handleCashflowTrend(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	series, err := s.deps.Ledger.CashflowTrend(ctx, p)
	if err != nil {
		apiFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(trendResponse{
		Labels:  series.Labels(),
		Revenue: series.Incomes(),
		Expense: series.Expenses(),
	}).Write(w)
}

func apiFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrForbidden) {
		ErrorResponse(http.StatusForbidden, msgAdminOnly).Write(w)
		return
	}
	slog.ErrorContext(r.Context(), "API read failed", "path", r.URL.Path, "error", err)
	DatabaseError().Write(w)
}
