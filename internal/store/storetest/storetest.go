// Package storetest opens throwaway databases for the tests of packages built on the store.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"train-station/internal/store"
)

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t testing.TB) *store.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	bunDB, err := store.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := store.CreateSchema(context.Background(), bunDB); err != nil {
		bunDB.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })
	return store.New(bunDB)
}
