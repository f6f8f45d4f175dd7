package service

import (
	"context"
	"testing"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRolesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.roles.InsertRoles(ctx))

	roles, err := env.roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)

	defaults := 0
	for _, r := range roles {
		if r.Default {
			defaults++
			assert.Equal(t, model.RoleUser, r.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestInsertRolesStripsDriftedPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := &rdb.RoleRepository{DB: env.store.DB}

	user, err := repo.FindByName(ctx, model.RoleUser)
	require.NoError(t, err)
	user.AddPermission(model.PermAdmin)
	require.NoError(t, repo.Save(ctx, user))

	require.NoError(t, env.roles.InsertRoles(ctx))

	user, err = repo.FindByName(ctx, model.RoleUser)
	require.NoError(t, err)
	assert.False(t, user.HasPermission(model.PermAdmin))
	assert.True(t, user.HasPermission(model.PermFollow))
	assert.True(t, user.HasPermission(model.PermReview))
	assert.True(t, user.HasPermission(model.PermPublish))

	admin, err := repo.FindByName(ctx, model.RoleAdministrator)
	require.NoError(t, err)
	assert.Equal(t, 31, admin.Permissions)
}

func TestAdminNamePolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := &rdb.RoleRepository{DB: env.store.DB}
	policy := AdminNamePolicy{AdminName: "admin"}

	role, err := policy.ResolveRole(ctx, repo, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdministrator, role.Name)

	role, err = policy.ResolveRole(ctx, repo, "john")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, role.Name)
}

func TestAdminNamePolicyWithoutRoles(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.DB.Exec("DELETE FROM roles").Error)

	_, err := AdminNamePolicy{}.ResolveRole(context.Background(), &rdb.RoleRepository{DB: env.store.DB}, "john")
	assert.ErrorIs(t, err, ErrRolesNotSeeded)
}
