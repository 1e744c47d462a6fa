// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/db"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
