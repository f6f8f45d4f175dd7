package service

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, env *testEnv, artist *model.User, title string) *model.Composition {
	t.Helper()
	ctx := context.Background()
	c := model.NewComposition(model.ReleaseAlbum, title, "see http://example.com")
	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Create(ctx, uow, artist, c)
	})
	require.NoError(t, err)
	return c
}

func TestCreateGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)
	john := env.confirmed(t, "john")

	c := publish(t, env, john, "Hi there!")
	assert.Equal(t, strconv.FormatUint(c.ID, 10)+"-hi-there-", c.SlugString())

	got, err := env.comps.GetBySlug(context.Background(), c.SlugString())
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, john.ID, got.ArtistID)
	assert.Contains(t, got.DescriptionHTML, `href="http://example.com"`)
}

func TestSameTitleYieldsDistinctSlugs(t *testing.T) {
	env := newTestEnv(t)
	john := env.confirmed(t, "john")

	first := publish(t, env, john, "Same")
	second := publish(t, env, john, "Same")
	assert.NotEqual(t, first.SlugString(), second.SlugString())

	for _, c := range []*model.Composition{first, second} {
		assert.True(t, strings.HasPrefix(c.SlugString(), strconv.FormatUint(c.ID, 10)+"-"))
		got, err := env.comps.GetBySlug(context.Background(), c.SlugString())
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	}
}

func TestCreateRequiresPublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	john.Role.RemovePermission(model.PermPublish)

	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Create(ctx, uow, john, model.NewComposition(model.ReleaseSingle, "x", "y"))
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEditRegeneratesSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	c := publish(t, env, john, "Old Title")
	oldSlug := c.SlugString()

	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Edit(ctx, uow, john, c, CompositionInput{
			ReleaseType: model.ReleaseSingle,
			Title:       "New Title",
			Description: "<b>bold</b>",
		})
	})
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(c.ID, 10)+"-new-title", c.SlugString())

	_, err = env.comps.GetBySlug(ctx, oldSlug)
	assert.ErrorIs(t, err, ErrCompositionNotFound)
	got, err := env.comps.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "bold", got.DescriptionHTML)
	assert.Equal(t, model.ReleaseSingle, got.ReleaseType)
}

func TestEditAndDeleteAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	susan := env.confirmed(t, "susan")
	admin := env.confirmed(t, "admin")
	c := publish(t, env, john, "Mine")

	in := CompositionInput{ReleaseType: model.ReleaseSingle, Title: "Theirs", Description: "d"}
	err := env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Edit(ctx, uow, susan, c, in)
	})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Delete(ctx, uow, susan, c)
	})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return env.comps.Delete(ctx, uow, admin, c)
	})
	require.NoError(t, err)
	_, err = env.comps.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCompositionNotFound)
}

func TestFollowedCompositionsIncludeOwn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	john := env.confirmed(t, "john")
	susan := env.confirmed(t, "susan")
	david := env.confirmed(t, "david")
	follow(t, env, john, susan)

	publish(t, env, john, "mine")
	publish(t, env, susan, "hers")
	publish(t, env, david, "his")

	page, err := env.follows.FollowedCompositions(ctx, john, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	all, err := env.comps.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	own, err := env.comps.ListByArtist(ctx, david, 1)
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "his", own.Items[0].Title)
}
