package testsupport

import (
	"context"
	"testing"

	"stageflow/internal/config"
	"stageflow/internal/dataset"
	"stageflow/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustImport imports ds into st.
func MustImport(t testing.TB, st *store.Store, ds *dataset.Dataset) store.ImportResult {
	t.Helper()

	result, err := st.Import(context.Background(), ds)
	if err != nil {
		t.Fatalf("store.Import: %v", err)
	}
	return result
}
