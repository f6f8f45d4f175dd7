package rdb_test

import (
	"context"
	"errors"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/repository/rdb/rdbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countUsers(t *testing.T, s *rdb.Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB.Model(&model.User{}).Count(&n).Error)
	return n
}

func countFollows(t *testing.T, s *rdb.Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB.Model(&model.Follow{}).Count(&n).Error)
	return n
}

func TestUnitOfWorkRollbackDiscardsStagedRows(t *testing.T) {
	s := rdbtest.NewStore(t)
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	u, err := model.NewUser("john", "john@example.com", "cat", nil)
	require.NoError(t, err)
	require.NoError(t, uow.Users().Create(ctx, u))
	_, err = uow.Follows().Follow(ctx, u.ID, u.ID)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	assert.True(t, uow.Closed())
	assert.Equal(t, int64(0), countUsers(t, s))
	assert.Equal(t, int64(0), countFollows(t, s))
}

func TestUnitOfWorkCommitPersists(t *testing.T) {
	s := rdbtest.NewStore(t)
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	u, err := model.NewUser("john", "john@example.com", "cat", nil)
	require.NoError(t, err)
	require.NoError(t, uow.Users().Create(ctx, u))
	require.NoError(t, uow.Commit())

	assert.ErrorIs(t, uow.Commit(), rdb.ErrUnitClosed)
	assert.NoError(t, uow.Rollback())
	assert.Equal(t, int64(1), countUsers(t, s))
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := rdbtest.NewStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		u, err := model.NewUser("john", "john@example.com", "cat", nil)
		require.NoError(t, err)
		require.NoError(t, uow.Users().Create(ctx, u))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countUsers(t, s))
}

func TestDuplicateUsernameIsConflict(t *testing.T) {
	s := rdbtest.NewStore(t)
	rdbtest.CreateUser(t, s, "john", nil)

	u, err := model.NewUser("john", "other@example.com", "dog", nil)
	require.NoError(t, err)
	err = (&rdb.UserRepository{DB: s.DB}).Create(context.Background(), u)
	assert.ErrorIs(t, err, rdb.ErrConflict)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := rdb.Open("postgres", "", false)
	assert.ErrorIs(t, err, rdb.ErrUnknownDriver)
}
