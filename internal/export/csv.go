// Package export renders report rows as downloadable files.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"kopimakmur/internal/core"
	"kopimakmur/internal/report"
)

// ContentTypeCSV is the media type served with WriteTransactionsCSV output.
const ContentTypeCSV = "text/csv; charset=utf-8"

type transactionRow struct {
	ID          int64  `csv:"ID"`
	Date        string `csv:"Tanggal"`
	Kind        string `csv:"Tipe"`
	Category    string `csv:"Kategori"`
	Description string `csv:"Deskripsi"`
	Amount      int64  `csv:"Jumlah"`
	Unit        string `csv:"Satuan"`
}

// WriteTransactionsCSV writes one header row and one row per transaction.
func WriteTransactionsCSV(w io.Writer, txs []core.Transaction) error {
	rows := make([]*transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &transactionRow{
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Kind:        tx.Kind.Label(),
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.Rupiah,
			Unit:        tx.Unit,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

// Filename names the export for a month of a year, or the whole year.
func Filename(month, year int) string {
	if month > 0 {
		return fmt.Sprintf("laporan_cashflow_%s_%d.csv", report.MonthName(month), year)
	}
	return fmt.Sprintf("laporan_cashflow_%d.csv", year)
}
