package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kopimakmur/internal/amqp"
	"kopimakmur/internal/report"
	"kopimakmur/internal/sheets"
	"kopimakmur/internal/storage"
)

// LedgerSync applies ledger events to a mirror.
type LedgerSync struct {
	mirror sheets.LedgerMirror
	store  storage.TransactionStore
}

// NewLedgerSync returns a worker. store is optional and only used by Backfill.
func NewLedgerSync(mirror sheets.LedgerMirror, store storage.TransactionStore) *LedgerSync {
	return &LedgerSync{mirror: mirror, store: store}
}

// HandleLedgerEvent processes a single ledger event from AMQP.
func (w *LedgerSync) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", ev.EventID,
		"type", ev.Type,
		"transaction_id", ev.TransactionID)

	switch ev.Type {
	case amqp.EventCreated, amqp.EventUpdated:
		tx, err := ev.Transaction.ToTransaction()
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if err := w.mirror.Upsert(ctx, tx); err != nil {
			return fmt.Errorf("mirror upsert: %w", err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.Remove(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("mirror remove: %w", err)
		}
	}
	return nil
}

// Backfill pushes every stored transaction to the mirror and then removes
// mirror rows whose transaction no longer exists. It is run once at startup
// to recover from events published while the worker was down.
func (w *LedgerSync) Backfill(ctx context.Context) error {
	if w.store == nil {
		return errors.New("backfill requires a transaction store")
	}
	txs, err := w.store.ListTransactions(ctx, report.Filter{}, 0)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	stored := make(map[int64]struct{}, len(txs))
	var synced, pruned, failed int
	for _, tx := range txs {
		stored[tx.ID] = struct{}{}
		if err := w.mirror.Upsert(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to backfill transaction", "id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	mirrored, err := w.mirror.IDs(ctx)
	if err != nil {
		return fmt.Errorf("list mirror ids: %w", err)
	}
	for _, id := range mirrored {
		if _, ok := stored[id]; ok {
			continue
		}
		if err := w.mirror.Remove(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to prune mirrored transaction", "id", id, "error", err)
			failed++
			continue
		}
		pruned++
	}

	slog.InfoContext(ctx, "Backfill completed",
		"total", len(txs),
		"synced", synced,
		"pruned", pruned,
		"errors", failed)
	if failed > 0 {
		return fmt.Errorf("backfill: %d mirror writes failed", failed)
	}
	return nil
}
