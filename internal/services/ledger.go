package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kopimakmur/internal/amqp"
	"kopimakmur/internal/auth"
	"kopimakmur/internal/core"
	applog "kopimakmur/internal/log"
	"kopimakmur/internal/report"
	"kopimakmur/internal/storage"
)

const (
	recentLimit  = 10
	trendMonths  = 6
	dashboardFmt = "%s %d"
)

// EventPublisher receives ledger events after a committed write.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// Ledger orchestrates transaction writes and the read models built on
// top of them.
type Ledger struct {
	store     storage.Store
	publisher EventPublisher
	now       func() time.Time
}

// NewLedger creates the service. publisher may be nil.
func NewLedger(store storage.Store, publisher EventPublisher) *Ledger {
	return &Ledger{store: store, publisher: publisher, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (s *Ledger) WithClock(now func() time.Time) *Ledger {
	s.now = now
	return s
}

// Create records a transaction owned by p.
func (s *Ledger) Create(ctx context.Context, p auth.Principal, tx core.Transaction) (core.Transaction, error) {
	if !p.Can(auth.EditLedger) {
		return core.Transaction{}, ErrForbidden
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.OwnerID = p.UserID

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentLedger).
		WithOperation(applog.OpCreate).
		WithTransaction(created.ID, created.Category, created.Amount.Rupiah).
		WithUser(p.Username, string(p.Role))
	slog.InfoContext(ctx, "Transaction created", fields.ToSlice()...)

	s.publish(ctx, amqp.EventCreated, created)
	return created, nil
}

// Update replaces every field of the stored transaction except its id
// and owner.
func (s *Ledger) Update(ctx context.Context, p auth.Principal, tx core.Transaction) error {
	if !p.Can(auth.EditLedger) {
		return ErrForbidden
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	existing, err := s.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	tx.OwnerID = existing.OwnerID

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentLedger).
		WithOperation(applog.OpUpdate).
		WithTransaction(tx.ID, tx.Category, tx.Amount.Rupiah).
		WithUser(p.Username, string(p.Role))
	slog.InfoContext(ctx, "Transaction updated", fields.ToSlice()...)
	s.publish(ctx, amqp.EventUpdated, tx)
	return nil
}

func (s *Ledger) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if !p.Can(auth.EditLedger) {
		return ErrForbidden
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id,
		applog.FieldUsername, p.Username)
	s.publish(ctx, amqp.EventDeleted, core.Transaction{ID: id})
	return nil
}

func (s *Ledger) Get(ctx context.Context, p auth.Principal, id int64) (core.Transaction, error) {
	if !p.Can(auth.ViewLedger) {
		return core.Transaction{}, ErrForbidden
	}
	return s.store.GetTransaction(ctx, id)
}

// publish is fire-and-log: the write has already committed.
func (s *Ledger) publish(ctx context.Context, t amqp.EventType, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(t, tx)); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentAMQP).
			WithOperation(string(t)).
			WithError(err)
		fields[applog.FieldTransactionID] = tx.ID
		slog.ErrorContext(ctx, "Failed to publish ledger event", fields.ToSlice()...)
	}
}

// CashflowView is the data behind the cash-flow page.
type CashflowView struct {
	Transactions []core.Transaction
	Summary      report.Summary
	Month        report.Summary // current calendar month, ignores the filter
	MonthLabel   string
}

// Cashflow lists transactions matching f with totals and breakdown.
func (s *Ledger) Cashflow(ctx context.Context, p auth.Principal, f report.Filter) (CashflowView, error) {
	if !p.Can(auth.ViewLedger) {
		return CashflowView{}, ErrForbidden
	}
	txs, err := s.store.ListTransactions(ctx, f, 0)
	if err != nil {
		return CashflowView{}, fmt.Errorf("list transactions: %w", err)
	}

	now := s.now()
	month, err := s.store.ListTransactions(ctx, report.CurrentMonth(now), 0)
	if err != nil {
		return CashflowView{}, fmt.Errorf("list current month: %w", err)
	}

	return CashflowView{
		Transactions: txs,
		Summary:      report.Summarize(txs),
		Month:        report.Summarize(month),
		MonthLabel:   monthLabel(now),
	}, nil
}

// Overview is the dashboard read model for admin and viewonly users.
type Overview struct {
	Month      report.Summary
	MonthLabel string
	Recent     []core.Transaction
	Trend      report.Series
	Users      int
}

// Overview builds the dashboard: current-month totals and breakdown, the
// latest transactions, a six month trend and the user count.
func (s *Ledger) Overview(ctx context.Context, p auth.Principal) (Overview, error) {
	if !p.Can(auth.ViewOverview) {
		return Overview{}, ErrForbidden
	}
	now := s.now()

	month, err := s.store.ListTransactions(ctx, report.CurrentMonth(now), 0)
	if err != nil {
		return Overview{}, fmt.Errorf("list current month: %w", err)
	}
	recent, err := s.store.ListTransactions(ctx, report.Filter{}, recentLimit)
	if err != nil {
		return Overview{}, fmt.Errorf("list recent: %w", err)
	}
	trend, err := s.store.ListTransactions(ctx, report.TrailingRange(now, trendMonths), 0)
	if err != nil {
		return Overview{}, fmt.Errorf("list trend: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("count users: %w", err)
	}

	return Overview{
		Month:      report.Summarize(month),
		MonthLabel: monthLabel(now),
		Recent:     recent,
		Trend:      report.TrailingMonths(trend, now, trendMonths),
		Users:      users,
	}, nil
}

// ReportView is the data behind the report page.
type ReportView struct {
	Month        int // 0 when the whole year is shown
	Year         int
	Transactions []core.Transaction
	Summary      report.Summary
	Series       report.Series
}

// Report summarises a month of a year, or the whole year when month is 0.
// The chart is a day series for a month and a month series for a year.
func (s *Ledger) Report(ctx context.Context, p auth.Principal, month, year int) (ReportView, error) {
	if !p.Can(auth.ViewReports) {
		return ReportView{}, ErrForbidden
	}
	if year == 0 {
		year = s.now().Year()
	}
	txs, err := s.store.ListTransactions(ctx, report.Filter{Month: month, Year: year}, 0)
	if err != nil {
		return ReportView{}, fmt.Errorf("list transactions: %w", err)
	}

	v := ReportView{
		Month:        month,
		Year:         year,
		Transactions: txs,
		Summary:      report.Summarize(txs),
	}
	if month > 0 {
		v.Series = report.DaySeries(txs, year, month)
	} else {
		v.Series = report.YearSeries(txs, year)
	}
	return v, nil
}

// DashboardStats is the payload of the dashboard-stats endpoint.
type DashboardStats struct {
	TotalRevenue      int64 `json:"total_revenue"`
	TotalExpense      int64 `json:"total_expense"`
	TotalTransactions int   `json:"total_transactions"`
	TotalUsers        int   `json:"total_users"`
	Profit            int64 `json:"profit"`
}

// Stats returns current-month totals and the user count.
func (s *Ledger) Stats(ctx context.Context, p auth.Principal) (DashboardStats, error) {
	if !p.Authenticated() {
		return DashboardStats{}, ErrForbidden
	}
	txs, err := s.store.ListTransactions(ctx, report.CurrentMonth(s.now()), 0)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list current month: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("count users: %w", err)
	}
	sum := report.Summarize(txs)
	return DashboardStats{
		TotalRevenue:      sum.Income,
		TotalExpense:      sum.Expense,
		TotalTransactions: sum.Count,
		TotalUsers:        users,
		Profit:            sum.Net,
	}, nil
}

// ExpenseDistribution returns the current month's expenses per category.
// The boolean is true when placeholder data was returned.
func (s *Ledger) ExpenseDistribution(ctx context.Context, p auth.Principal) (report.Distribution, bool, error) {
	if !p.Authenticated() {
		return report.Distribution{}, false, ErrForbidden
	}
	txs, err := s.store.ListTransactions(ctx, report.CurrentMonth(s.now()), 0)
	if err != nil {
		return report.Distribution{}, false, fmt.Errorf("list current month: %w", err)
	}
	d, placeholder := report.ExpenseDistribution(txs)
	return d, placeholder, nil
}

// CashflowTrend returns six trailing months labelled with their year.
func (s *Ledger) CashflowTrend(ctx context.Context, p auth.Principal) (report.Series, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	now := s.now()
	txs, err := s.store.ListTransactions(ctx, report.TrailingRange(now, trendMonths), 0)
	if err != nil {
		return nil, fmt.Errorf("list trend: %w", err)
	}
	return report.TrailingMonthsWithYear(txs, now, trendMonths), nil
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf(dashboardFmt, report.MonthName(int(t.Month())), t.Year())
}
