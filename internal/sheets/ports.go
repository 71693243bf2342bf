package sheets

import (
	"context"

	"kopimakmur/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror keeps an external copy of the transaction ledger in step
	// with committed changes. Upsert and Remove must be idempotent so that
	// a redelivered event leaves the mirror unchanged. IDs lists what the
	// mirror currently holds, for reconciliation.
	LedgerMirror interface {
		Upsert(ctx context.Context, tx core.Transaction) error
		Remove(ctx context.Context, id int64) error
		IDs(ctx context.Context) ([]int64, error)
	}
)

// Header is the first row written to a mirror sheet.
var Header = []string{"ID", "Tanggal", "Tipe", "Kategori", "Deskripsi", "Jumlah", "Satuan"}
