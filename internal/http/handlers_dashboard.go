package http

import (
	"net/http"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
	"kopimakmur/internal/services"
)

// chartData is serialised into data attributes for the page scripts.
type chartData struct {
	Labels  []string `json:"labels"`
	Income  []int64  `json:"income"`
	Expense []int64  `json:"expense"`
	Profit  []int64  `json:"profit,omitempty"`
}

func newChartData(s report.Series, withProfit bool) chartData {
	c := chartData{
		Labels:  s.Labels(),
		Income:  s.Incomes(),
		Expense: s.Expenses(),
	}
	if withProfit {
		c.Profit = s.Nets()
	}
	return c
}

type dashboardView struct {
	services.Overview
	Chart chartData
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	ctx, cancel := withReadTimeout(r)
	defer cancel()

	ov, err := s.deps.Ledger.Overview(ctx, p)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_dashboard.html", pageData{
		Title:  "Dashboard Admin",
		Active: "dashboard",
		User:   p,
		Data:   dashboardView{Overview: ov, Chart: newChartData(ov.Trend, true)},
	})
}

// handleViewOnly shows the read-only dashboard. Other roles are sent to
// the cash-flow page.
func (s *Server) handleViewOnly(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if p.Role != core.RoleViewOnly {
		redirect(w, r, "/cashflow")
		return
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	ov, err := s.deps.Ledger.Overview(ctx, p)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "viewonly.html", pageData{
		Title:  "Dashboard",
		Active: "dashboard",
		User:   p,
		Data:   dashboardView{Overview: ov, Chart: newChartData(ov.Trend, false)},
	})
}
