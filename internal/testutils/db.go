package testutils

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/linskybing/grant-review/internal/config/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	dbSeq      atomic.Int64
	unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// NewSQLiteDB returns a migrated in-memory database private to t. A single
// connection keeps every statement, including transactions, on the same
// in-memory store.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := unsafeName.ReplaceAllString(t.Name(), "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}
