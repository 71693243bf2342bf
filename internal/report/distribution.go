package report

import "kopimakmur/internal/core"

// Distribution is the chart payload of the expense-distribution endpoint.
type Distribution struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// PlaceholderDistribution is served when there are no expenses in the
// period so the chart is never empty. Callers flag it as sample data.
var PlaceholderDistribution = Distribution{
	Labels: []string{"Bahan Pokok", "Barang", "Pengeluaran lain_lain"},
	Data:   []float64{90.9, 5.3, 3.8},
}

// ExpenseDistribution returns category totals sorted by total desc. The
// second result is true when the placeholder was substituted.
func ExpenseDistribution(txs []core.Transaction) (Distribution, bool) {
	cats := Breakdown(txs)
	if len(cats) == 0 {
		return Distribution{
			Labels: append([]string(nil), PlaceholderDistribution.Labels...),
			Data:   append([]float64(nil), PlaceholderDistribution.Data...),
		}, true
	}
	SortByTotalDesc(cats)
	d := Distribution{
		Labels: make([]string, len(cats)),
		Data:   make([]float64, len(cats)),
	}
	for i, c := range cats {
		d.Labels[i] = c.Category
		d.Data[i] = float64(c.Total)
	}
	return d, false
}
