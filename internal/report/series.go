package report

import (
	"strconv"
	"time"

	"kopimakmur/internal/core"
)

var monthNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var shortMonthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// MonthName returns the Indonesian name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// MonthNames returns all twelve month names, January first.
func MonthNames() []string {
	return append([]string(nil), monthNames[:]...)
}

type Bucket struct {
	Label   string
	Income  int64
	Expense int64
}

func (b Bucket) Net() int64 { return b.Income - b.Expense }

// Series is an ordered, fixed-length list of buckets.
type Series []Bucket

func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.Label
	}
	return out
}

func (s Series) Incomes() []int64 {
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Income
	}
	return out
}

func (s Series) Expenses() []int64 {
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Expense
	}
	return out
}

func (s Series) Nets() []int64 {
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Net()
	}
	return out
}

func (b *Bucket) add(tx core.Transaction) {
	switch tx.Kind {
	case core.KindIncome:
		b.Income += tx.Amount.Rupiah
	case core.KindExpense:
		b.Expense += tx.Amount.Rupiah
	}
}

// TrailingRange is the date span covered by TrailingMonths(now, n).
func TrailingRange(now time.Time, n int) Filter {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, -(n - 1), 0)
	return Filter{
		From: core.DateOf(start),
		To:   core.DateOf(first.AddDate(0, 1, -1)),
	}
}

// TrailingMonths returns n calendar-month buckets ending with the month
// containing now, oldest first, labelled with the month name.
func TrailingMonths(txs []core.Transaction, now time.Time, n int) Series {
	return trailing(txs, now, n, func(t time.Time) string {
		return monthNames[t.Month()-1]
	})
}

// TrailingMonthsWithYear is TrailingMonths labelled "Maret 2024".
func TrailingMonthsWithYear(txs []core.Transaction, now time.Time, n int) Series {
	return trailing(txs, now, n, func(t time.Time) string {
		return monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
	})
}

func trailing(txs []core.Transaction, now time.Time, n int, label func(time.Time) string) Series {
	if n <= 0 {
		return Series{}
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	starts := make([]time.Time, n)
	series := make(Series, n)
	for i := 0; i < n; i++ {
		starts[i] = first.AddDate(0, i-(n-1), 0)
		series[i].Label = label(starts[i])
	}

	for _, tx := range txs {
		d := tx.Date.Time
		for i, start := range starts {
			if !d.Before(start) && d.Before(start.AddDate(0, 1, 0)) {
				series[i].add(tx)
				break
			}
		}
	}
	return series
}

// YearSeries returns twelve buckets for year, labelled Jan..Des.
func YearSeries(txs []core.Transaction, year int) Series {
	series := make(Series, 12)
	for i := range series {
		series[i].Label = shortMonthNames[i]
	}
	for _, tx := range txs {
		if tx.Date.Year() != year {
			continue
		}
		series[tx.Date.Month()-1].add(tx)
	}
	return series
}

// DaySeries returns one bucket per calendar day of the month, labelled
// with the day number.
func DaySeries(txs []core.Transaction, year, month int) Series {
	days := core.DaysIn(year, month)
	series := make(Series, days)
	for i := range series {
		series[i].Label = strconv.Itoa(i + 1)
	}
	for _, tx := range txs {
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		series[tx.Date.Day()-1].add(tx)
	}
	return series
}
