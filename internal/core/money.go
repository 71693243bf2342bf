// Package core provides money parsing and handling utilities.
//
// Amounts are whole rupiah. Input accepts plain digits or dot-grouped
// thousands ("25.000"), with an optional "Rp" prefix.
package core

import (
	"strconv"
	"strings"
)

type Money struct {
	Rupiah int64
}

func (m Money) Validate() error {
	if m.Rupiah < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount for display, e.g. "Rp 1.250.000".
func (m Money) String() string {
	return FormatRupiah(m.Rupiah)
}

// ParseRupiah converts user input to whole rupiah.
//
// Examples:
//
//	ParseRupiah("25000")     -> 25000, nil
//	ParseRupiah("25.000")    -> 25000, nil
//	ParseRupiah("Rp 1.500")  -> 1500, nil
//	ParseRupiah("1500,00")   -> 1500, nil
//	ParseRupiah("1500,50")   -> 0, ErrInvalidAmount
func ParseRupiah(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(s[2:])
	}
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}

	// A decimal comma is tolerated only when the fraction is zero.
	if i := strings.IndexByte(s, ','); i >= 0 {
		frac := s[i+1:]
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, ErrInvalidAmount
		}
		s = s[:i]
	}

	if strings.Contains(s, ".") {
		groups := strings.Split(s, ".")
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return 0, ErrInvalidAmount
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return 0, ErrInvalidAmount
			}
		}
		s = strings.Join(groups, "")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatRupiah renders an amount with dot thousand separators.
func FormatRupiah(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
