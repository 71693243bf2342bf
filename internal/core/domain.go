package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const (
	RoleAdmin    Role = "admin"
	RoleGuest    Role = "guest"
	RoleViewOnly Role = "viewonly"
)

type (
	// Kind partitions transactions into income and expense.
	Kind string

	// Role is the access role stored on a user. Values outside the
	// known constants are allowed and treated as read-only roles.
	Role string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Date        Date
		Kind        Kind
		Category    string
		Description string
		Amount      Money
		Unit        string // optional quantity unit, e.g. "kg"
		OwnerID     int64  // 0 when recorded by a seed account
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Role         Role
	}

	Product struct {
		ID       int64
		Name     string
		Category string
		Price    Money
		Stock    int
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyUsername = errors.New("empty username")
	ErrEmptyRole     = errors.New("empty role")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidStock  = errors.New("invalid stock")
	ErrValueTooLong  = errors.New("value too long")
	ErrEmptyPassword = errors.New("empty password")
)

// ParseKind accepts the canonical kind names and the Indonesian form
// labels used by the cash-flow page.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "pendapatan":
		return KindIncome, nil
	case "expense", "pengeluaran":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Label returns the Indonesian display label.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Pendapatan"
	case KindExpense:
		return "Pengeluaran"
	default:
		return string(k)
	}
}

func (r Role) String() string {
	return string(r)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DaysIn returns the number of calendar days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := maxLen("category", t.Category, 100); err != nil {
		return err
	}
	if err := maxLen("description", t.Description, 200); err != nil {
		return err
	}
	if err := maxLen("unit", t.Unit, 20); err != nil {
		return err
	}
	return t.Amount.Validate()
}

// IsIncome reports whether the transaction counts towards revenue.
func (t Transaction) IsIncome() bool { return t.Kind == KindIncome }

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if err := maxLen("username", u.Username, 50); err != nil {
		return err
	}
	if strings.TrimSpace(string(u.Role)) == "" {
		return ErrEmptyRole
	}
	return maxLen("role", string(u.Role), 20)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if err := maxLen("name", p.Name, 100); err != nil {
		return err
	}
	if err := maxLen("category", p.Category, 100); err != nil {
		return err
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return p.Price.Validate()
}

func maxLen(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s (max %d characters)", ErrValueTooLong, field, max)
	}
	return nil
}
