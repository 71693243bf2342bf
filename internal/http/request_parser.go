// Package http provides HTTP server and handler implementations.
//
// This file turns form values, query strings and path segments into typed
// domain values. Nothing here touches the store.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
)

var errInvalidID = errors.New("invalid id")

// parsePathID reads the {id} path segment.
func parsePathID(r *http.Request) (int64, error) {
	return parseID(r.PathValue("id"))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(sanitizeInput(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// ParseTransactionForm reads the cash-flow form fields tanggal, tipe,
// kategori, deskripsi, jumlah and satuan. Field rules beyond parsing are
// enforced by the ledger service.
func ParseTransactionForm(form url.Values) (core.Transaction, error) {
	date, err := core.ParseDate(sanitizeInput(form.Get("tanggal")))
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(form.Get("tipe"))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseRupiah(sanitizeInput(form.Get("jumlah")))
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Date:        date,
		Kind:        kind,
		Category:    sanitizeInput(form.Get("kategori")),
		Description: sanitizeInput(form.Get("deskripsi")),
		Amount:      core.Money{Rupiah: amount},
		Unit:        sanitizeInput(form.Get("satuan")),
	}, nil
}

// ParseProductForm reads nama, kategori, harga and stok, plus product_id
// when present.
func ParseProductForm(form url.Values) (core.Product, error) {
	var p core.Product
	if raw := form.Get("product_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return core.Product{}, err
		}
		p.ID = id
	}

	price, err := core.ParseRupiah(sanitizeInput(form.Get("harga")))
	if err != nil {
		return core.Product{}, err
	}
	stock, err := strconv.Atoi(sanitizeInput(form.Get("stok")))
	if err != nil {
		return core.Product{}, fmt.Errorf("%w: %q", core.ErrInvalidStock, form.Get("stok"))
	}

	p.Name = sanitizeInput(form.Get("nama"))
	p.Category = sanitizeInput(form.Get("kategori"))
	p.Price = core.Money{Rupiah: price}
	p.Stock = stock
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	return p, nil
}

// UserForm is the decoded user add/edit form.
type UserForm struct {
	ID       int64
	Username string
	Password string
	Role     core.Role
}

// ParseUserForm reads user_id, username, password and role. Passwords
// are not trimmed.
func ParseUserForm(form url.Values) (UserForm, error) {
	f := UserForm{
		Username: sanitizeInput(form.Get("username")),
		Password: form.Get("password"),
		Role:     core.Role(sanitizeInput(form.Get("role"))),
	}
	if raw := form.Get("user_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return UserForm{}, err
		}
		f.ID = id
	}
	return f, nil
}

// ParseFilterQuery reads date_from, date_to, month and year.
func ParseFilterQuery(q url.Values) (report.Filter, error) {
	return report.ParseFilter(
		sanitizeInput(q.Get("date_from")),
		sanitizeInput(q.Get("date_to")),
		sanitizeInput(q.Get("month")),
		sanitizeInput(q.Get("year")),
	)
}

// ReportParams holds the report page selection. Month is 0 for a whole
// year.
type ReportParams struct {
	Month int
	Year  int
}

// ParseReportParams reads month and year, defaulting the year to now.
func ParseReportParams(q url.Values, now time.Time) (ReportParams, error) {
	f, err := report.ParseFilter("", "", sanitizeInput(q.Get("month")), sanitizeInput(q.Get("year")))
	if err != nil {
		return ReportParams{}, err
	}
	p := ReportParams{Month: f.Month, Year: f.Year}
	if p.Year == 0 {
		p.Year = now.Year()
	}
	return p, nil
}
