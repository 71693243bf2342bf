package report

import (
	"sort"
	"strconv"
	"strings"

	"kopimakmur/internal/core"
)

// quantityCategories get a "<amount> <unit>" roll-up in the breakdown.
var quantityCategories = map[string]bool{
	"Bahan Pokok": true,
	"Barang":      true,
}

// CategoryTotal is one row of the expense breakdown.
type CategoryTotal struct {
	Category string
	Total    int64
	Count    int
	Quantity string // display only, "-" when nothing to roll up
}

type Summary struct {
	Income     int64
	Expense    int64
	Net        int64
	Margin     float64 // percent of income, 0 when income is 0
	Count      int
	Categories []CategoryTotal
}

// Summarize totals txs by kind and breaks expenses down by category.
func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Kind {
		case core.KindIncome:
			s.Income += tx.Amount.Rupiah
		case core.KindExpense:
			s.Expense += tx.Amount.Rupiah
		}
	}
	s.Count = len(txs)
	s.Net = s.Income - s.Expense
	s.Margin = Margin(s.Income, s.Expense)
	s.Categories = Breakdown(txs)
	return s
}

// Margin is net over income as a percentage.
func Margin(income, expense int64) float64 {
	if income <= 0 {
		return 0
	}
	return float64(income-expense) / float64(income) * 100
}

// Breakdown groups expense rows by category in first-seen order.
func Breakdown(txs []core.Transaction) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	quantities := make(map[string][]string)

	for _, tx := range txs {
		if tx.Kind != core.KindExpense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}
		out[i].Total += tx.Amount.Rupiah
		out[i].Count++

		if quantityCategories[tx.Category] && tx.Unit != "" && tx.Amount.Rupiah != 0 {
			quantities[tx.Category] = append(quantities[tx.Category],
				strconv.FormatInt(tx.Amount.Rupiah, 10)+" "+tx.Unit)
		}
	}

	for i := range out {
		out[i].Quantity = "-"
		if q := quantities[out[i].Category]; len(q) > 0 {
			out[i].Quantity = strings.Join(q, " + ")
		}
	}
	return out
}

// SortByTotalDesc orders a breakdown by total, largest first. Ties keep
// their relative order.
func SortByTotalDesc(cs []CategoryTotal) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Total > cs[j].Total
	})
}
