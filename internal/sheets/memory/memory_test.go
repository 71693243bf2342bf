package memory

import (
	"context"
	"testing"

	"kopimakmur/internal/core"
)

func TestMirrorUpsertIsIdempotent(t *testing.T) {
	m := New()
	ctx := context.Background()
	tx := core.Transaction{ID: 2, Category: "Gaji"}
	if err := m.Upsert(ctx, tx); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	tx.Category = "Sewa"
	if err := m.Upsert(ctx, tx); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows := m.Rows()
	if len(rows) != 1 || rows[0].Category != "Sewa" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if err := m.Remove(ctx, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Remove(ctx, 2); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Fatal("expected empty mirror")
	}
}
