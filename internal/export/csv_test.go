package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kopimakmur/internal/core"
)

func TestWriteTransactionsCSV(t *testing.T) {
	txs := []core.Transaction{
		{
			ID:          3,
			Date:        core.NewDate(2024, 3, 2),
			Kind:        core.KindExpense,
			Category:    "Bahan Pokok",
			Description: "Gula, 5 kg",
			Amount:      core.Money{Rupiah: 30000},
			Unit:        "kg",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Tanggal,Tipe,Kategori,Deskripsi,Jumlah,Satuan", lines[0])
	assert.Equal(t, `3,2024-03-02,Pengeluaran,Bahan Pokok,"Gula, 5 kg",30000,kg`, lines[1])
}

func TestWriteTransactionsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "ID,Tanggal"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "laporan_cashflow_Maret_2024.csv", Filename(3, 2024))
	assert.Equal(t, "laporan_cashflow_2024.csv", Filename(0, 2024))
}
