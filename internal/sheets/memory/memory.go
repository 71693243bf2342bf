package memory

import (
	"context"
	"sort"
	"sync"

	"kopimakmur/internal/core"
	ports "kopimakmur/internal/sheets"
)

var _ ports.LedgerMirror = (*Mirror)(nil)

// Mirror is an in-process LedgerMirror keyed by transaction id.
type Mirror struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction
}

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Transaction)}
}

func (m *Mirror) Upsert(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tx.ID] = tx
	return nil
}

func (m *Mirror) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// IDs returns the mirrored ids in ascending order.
func (m *Mirror) IDs(context.Context) ([]int64, error) {
	rows := m.Rows()
	out := make([]int64, len(rows))
	for i, tx := range rows {
		out[i] = tx.ID
	}
	return out, nil
}

// Rows returns the mirrored transactions ordered by id.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.rows))
	for _, tx := range m.rows {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
