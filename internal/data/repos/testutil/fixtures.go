package testutil

import (
	"context"
	"testing"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/domain"
)

// Widget is the demo row every scenario starts from.
func Widget() *domain.Product {
	return &domain.Product{ID: 1, CategoryID: 10, Name: "Widget"}
}

// SeedProducts writes products through the store's own batch path.
func SeedProducts(tb testing.TB, st store.RecordStore, products ...*domain.Product) {
	tb.Helper()
	writes := make([]store.Write, 0, len(products))
	for _, p := range products {
		writes = append(writes, store.Write{Op: store.OpInsert, Key: domain.KeyOf(p), Record: p.Clone()})
	}
	if err := st.Apply(context.Background(), writes); err != nil {
		tb.Fatalf("seed products: %v", err)
	}
}
