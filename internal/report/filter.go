// Package report computes cash-flow summaries, category breakdowns and
// period series over a set of transactions. Everything here is pure: the
// caller fetches rows, this package only does arithmetic.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kopimakmur/internal/core"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Dialect selects the SQL flavour produced by Filter.Where.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DateColumn is the transaction date column both stores expose.
const DateColumn = "tx_date"

// Filter narrows a transaction set. Zero fields impose no constraint and
// all present fields are AND-composed.
//
// A Month without a Year matches that calendar month in every year.
type Filter struct {
	From  core.Date
	To    core.Date
	Month int
	Year  int
}

// ParseFilter builds a Filter from raw query values. Empty strings mean
// absent. Malformed values are rejected with ErrInvalidFilter.
func ParseFilter(dateFrom, dateTo, month, year string) (Filter, error) {
	var f Filter
	var err error

	if v := strings.TrimSpace(dateFrom); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return Filter{}, fmt.Errorf("%w: date_from %q", ErrInvalidFilter, v)
		}
	}
	if v := strings.TrimSpace(dateTo); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return Filter{}, fmt.Errorf("%w: date_to %q", ErrInvalidFilter, v)
		}
	}
	if v := strings.TrimSpace(month); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return Filter{}, fmt.Errorf("%w: month %q", ErrInvalidFilter, v)
		}
		f.Month = m
	}
	if v := strings.TrimSpace(year); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			return Filter{}, fmt.Errorf("%w: year %q", ErrInvalidFilter, v)
		}
		f.Year = y
	}
	return f, nil
}

// MonthRange returns a filter bounded to one calendar month.
func MonthRange(year, month int) Filter {
	return Filter{
		From: core.NewDate(year, month, 1),
		To:   core.NewDate(year, month, core.DaysIn(year, month)),
	}
}

// CurrentMonth is MonthRange for the month containing now.
func CurrentMonth(now time.Time) Filter {
	return MonthRange(now.Year(), int(now.Month()))
}

func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && f.Month == 0 && f.Year == 0
}

// Match reports whether tx satisfies every present constraint.
func (f Filter) Match(tx core.Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if f.Month != 0 && tx.Date.Month() != f.Month {
		return false
	}
	if f.Year != 0 && tx.Date.Year() != f.Year {
		return false
	}
	return true
}

// Apply returns the transactions matching f, preserving order.
func (f Filter) Apply(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Where maps the filter to a parameterised predicate over DateColumn.
// firstArg is the index of the first placeholder for Postgres and is
// ignored for SQLite. An empty filter yields an empty clause.
func (f Filter) Where(d Dialect, firstArg int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func() string {
		if d == Postgres {
			return "$" + strconv.Itoa(firstArg+len(args))
		}
		return "?"
	}

	if !f.From.IsZero() {
		conds = append(conds, DateColumn+" >= "+next())
		args = append(args, f.dateArg(d, f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, DateColumn+" <= "+next())
		args = append(args, f.dateArg(d, f.To))
	}
	if f.Month != 0 {
		if d == Postgres {
			conds = append(conds, "EXTRACT(MONTH FROM "+DateColumn+")::int = "+next())
			args = append(args, f.Month)
		} else {
			conds = append(conds, "strftime('%m', "+DateColumn+") = "+next())
			args = append(args, fmt.Sprintf("%02d", f.Month))
		}
	}
	if f.Year != 0 {
		if d == Postgres {
			conds = append(conds, "EXTRACT(YEAR FROM "+DateColumn+")::int = "+next())
			args = append(args, f.Year)
		} else {
			conds = append(conds, "strftime('%Y', "+DateColumn+") = "+next())
			args = append(args, fmt.Sprintf("%04d", f.Year))
		}
	}
	return strings.Join(conds, " AND "), args
}

func (f Filter) dateArg(d Dialect, date core.Date) any {
	if d == Postgres {
		return date.Time
	}
	return date.String()
}
