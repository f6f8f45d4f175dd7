// Package rdbtest opens throwaway SQLite stores for tests.
package rdbtest

import (
	"context"
	"path/filepath"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"

	"github.com/stretchr/testify/require"
)

// NewStore 每个测试一个独立的 SQLite 文件库，测试结束自动关闭
func NewStore(t *testing.T) *rdb.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ragtime-test.sqlite") + "?_busy_timeout=5000"
	db, err := rdb.Open(rdb.DriverSQLite, dsn, false)
	require.NoError(t, err)
	require.NoError(t, rdb.AutoMigrate(db))
	t.Cleanup(func() { _ = rdb.Close(db) })
	return rdb.NewStore(db)
}

// CreateUser 直接落库一个已确认用户，role 可为 nil
func CreateUser(t *testing.T, s *rdb.Store, username string, role *model.Role) *model.User {
	t.Helper()
	u, err := model.NewUser(username, username+"@example.com", "cat", role)
	require.NoError(t, err)
	u.Confirmed = true
	require.NoError(t, (&rdb.UserRepository{DB: s.DB}).Create(context.Background(), u))
	return u
}
