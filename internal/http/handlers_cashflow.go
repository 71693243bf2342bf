package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	"kopimakmur/internal/services"
	"kopimakmur/internal/storage"
)

type cashflowView struct {
	services.CashflowView
	Query url.Values
	Today string
}

func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	q := r.URL.Query()
	f, err := ParseFilterQuery(q)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, msgInvalidFilter, "/cashflow")
		return
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	view, err := s.deps.Ledger.Cashflow(ctx, p, f)
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "cashflow.html", pageData{
		Title:  "Cash Flow",
		Active: "cashflow",
		User:   p,
		Data: cashflowView{
			CashflowView: view,
			Query:        q,
			Today:        core.DateOf(s.clock()).String(),
		},
	})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/cashflow")
		return
	}
	tx, err := ParseTransactionForm(r.PostForm)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), "/cashflow")
		return
	}

	if _, err := s.deps.Ledger.Create(r.Context(), p, tx); err != nil {
		s.mutationFailed(w, r, p, err, "/cashflow")
		return
	}
	s.redirectWithFlash(w, r, flashSuccess, msgTxAdded, "/cashflow")
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := parsePathID(r)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, msgTxNotFound, "/cashflow")
		return
	}

	ctx, cancel := withReadTimeout(r)
	defer cancel()

	tx, err := s.deps.Ledger.Get(ctx, p, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.redirectWithFlash(w, r, flashError, msgTxNotFound, "/cashflow")
		return
	}
	if err != nil {
		s.loadFailed(w, r, p, err)
		return
	}
	s.render(w, r, http.StatusOK, "edit_transaction.html", pageData{
		Title:  "Edit Transaksi",
		Active: "cashflow",
		User:   p,
		Data:   tx,
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := parsePathID(r)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, msgTxNotFound, "/cashflow")
		return
	}
	back := "/cashflow/edit/" + strconv.FormatInt(id, 10)

	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), back)
		return
	}
	tx, err := ParseTransactionForm(r.PostForm)
	if err != nil {
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), back)
		return
	}
	tx.ID = id

	err = s.deps.Ledger.Update(r.Context(), p, tx)
	if errors.Is(err, storage.ErrNotFound) {
		s.redirectWithFlash(w, r, flashError, msgTxNotFound, "/cashflow")
		return
	}
	if err != nil {
		s.mutationFailed(w, r, p, err, back)
		return
	}
	s.redirectWithFlash(w, r, flashSuccess, msgTxUpdated, "/cashflow")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := parsePathID(r)
	if err != nil {
		FailureResponse(http.StatusNotFound, msgTxNotFound).Write(w)
		return
	}
	err = s.deps.Ledger.Delete(r.Context(), p, id)
	s.writeDeleteResult(w, r, err, msgTxNotFound)
}

// mutationFailed turns a service error from a form post into a notice.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, p auth.Principal, err error, back string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		s.redirectWithFlash(w, r, flashError, msgReadOnly, p.LandingPath())
	case isValidationError(err):
		s.redirectWithFlash(w, r, flashError, fmt.Sprintf(msgInvalidInput, err), back)
	default:
		slog.ErrorContext(r.Context(), "Mutation failed",
			"path", r.URL.Path,
			"username", p.Username,
			"error", err)
		s.redirectWithFlash(w, r, flashError, msgLoadFailed, back)
	}
}

// writeDeleteResult answers a JSON delete: 404 for a missing row,
// 200 with success false for a refused self-deletion.
func (s *Server) writeDeleteResult(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case err == nil:
		SuccessResponse().Write(w)
	case errors.Is(err, storage.ErrNotFound):
		FailureResponse(http.StatusNotFound, notFound).Write(w)
	case errors.Is(err, services.ErrSelfDeletion):
		FailureResponse(http.StatusOK, msgSelfDelete).Write(w)
	case errors.Is(err, services.ErrForbidden):
		FailureResponse(http.StatusForbidden, msgAdminOnly).Write(w)
	default:
		slog.ErrorContext(r.Context(), "Delete failed", "path", r.URL.Path, "error", err)
		FailureResponse(http.StatusInternalServerError, msgDatabaseError).Write(w)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrEmptyUsername,
		core.ErrEmptyRole,
		core.ErrEmptyName,
		core.ErrInvalidStock,
		core.ErrValueTooLong,
		core.ErrEmptyPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
