package service

import (
	"context"
	"errors"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func follow(t *testing.T, env *testEnv, a, b *model.User) bool {
	t.Helper()
	ctx := context.Background()
	var changed bool
	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		var err error
		changed, err = env.follows.Follow(ctx, uow, a, b)
		return err
	})
	require.NoError(t, err)
	return changed
}

func TestFollowAndUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	susan := env.confirmed(t, "susan")

	assert.True(t, follow(t, env, john, susan))
	assert.False(t, follow(t, env, john, susan))

	ok, err := env.follows.IsFollowing(ctx, john, susan)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.follows.IsAFollower(ctx, susan, john)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.follows.IsAFollower(ctx, john, susan)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := env.follows.CountFollowers(ctx, susan)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		changed, err := env.follows.Unfollow(ctx, uow, john, susan)
		assert.True(t, changed)
		return err
	})
	require.NoError(t, err)
	ok, err = env.follows.IsFollowing(ctx, john, susan)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnfollowSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")

	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		_, err := env.follows.Unfollow(ctx, uow, john, john)
		return err
	})
	assert.ErrorIs(t, err, ErrCannotUnfollowSelf)

	ok, err := env.follows.IsFollowing(ctx, john, john)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsFollowingUnsavedUser(t *testing.T) {
	env := newTestEnv(t)
	john := env.confirmed(t, "john")
	ghost, err := model.NewUser("ghost", "ghost@example.com", "cat", nil)
	require.NoError(t, err)

	ok, err := env.follows.IsFollowing(context.Background(), john, ghost)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = env.follows.IsAFollower(context.Background(), john, ghost)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddSelfFollows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	env.confirmed(t, "susan")

	_, err := (&rdb.FollowRepository{DB: env.store.DB}).Unfollow(ctx, john.ID, john.ID)
	require.NoError(t, err)

	fixed, err := env.follows.AddSelfFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	ok, err := env.follows.IsFollowing(ctx, john, john)
	require.NoError(t, err)
	assert.True(t, ok)

	fixed, err = env.follows.AddSelfFollows(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestOutboxRelayerMarksSentAndFailed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	susan := env.confirmed(t, "susan")
	follow(t, env, john, susan)

	var delivered []string
	fail := true
	relayer := NewOutboxRelayer(env.store, func(_ context.Context, ob *model.SocialOutbox) error {
		if fail && ob.Follower != ob.Followee {
			return errors.New("broker down")
		}
		delivered = append(delivered, ob.EventType)
		return nil
	})

	// 两条自关注成功，一条 john -> susan 失败
	assert.Equal(t, 2, relayer.DrainOnce(ctx))

	var failed model.SocialOutbox
	require.NoError(t, env.store.DB.Where("follower = ? AND followee = ?", john.ID, susan.ID).First(&failed).Error)
	assert.Equal(t, model.OutboxFailed, failed.Status)
	assert.Equal(t, 1, failed.Retry)

	fail = false
	assert.Equal(t, 1, relayer.DrainOnce(ctx))
	assert.Zero(t, relayer.DrainOnce(ctx))
	assert.Len(t, delivered, 3)

	require.NoError(t, env.store.DB.First(&failed, failed.ID).Error)
	assert.Equal(t, model.OutboxSent, failed.Status)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender(context.Background(), &model.SocialOutbox{EventType: model.EventFollow}))
}
