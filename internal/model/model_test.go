package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(7, PermPublish))
	assert.False(t, HasPermission(7, PermModerate))
	assert.True(t, HasPermission(0, 0))
}

func TestRolePermissionsAreIdempotent(t *testing.T) {
	r := &Role{Name: RoleUser}
	r.AddPermission(PermFollow)
	r.AddPermission(PermFollow)
	assert.Equal(t, 1, r.Permissions)

	r.AddPermission(PermPublish)
	r.RemovePermission(PermFollow)
	r.RemovePermission(PermFollow)
	assert.Equal(t, 4, r.Permissions)

	r.ResetPermissions()
	assert.Zero(t, r.Permissions)
}

func TestPasswordHashing(t *testing.T) {
	u, err := NewUser("john", "john@example.com", "cat", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, u.PasswordHash)
	assert.True(t, u.VerifyPassword("cat"))
	assert.False(t, u.VerifyPassword("dog"))

	other, err := NewUser("susan", "susan@example.com", "cat", nil)
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, other.PasswordHash, "hashes are salted")
}

func TestPasswordNotReadable(t *testing.T) {
	u := &User{}
	assert.PanicsWithError(t, ErrPasswordNotReadable.Error(), func() { _ = u.Password() })
}

func TestUserPermissions(t *testing.T) {
	role := &Role{Name: RoleUser}
	for _, p := range RolePermissions[RoleUser] {
		role.AddPermission(p)
	}
	u, err := NewUser("john", "john@example.com", "cat", role)
	require.NoError(t, err)
	assert.True(t, u.Can(PermFollow))
	assert.True(t, u.Can(PermPublish))
	assert.False(t, u.Can(PermModerate))
	assert.False(t, u.IsAdministrator())
	assert.False(t, u.IsAnonymous())

	noRole := &User{}
	assert.False(t, noRole.Can(PermFollow))
}

func TestAnonymousUser(t *testing.T) {
	var p Principal = AnonymousUser{}
	for _, perm := range []Permission{PermFollow, PermReview, PermPublish, PermModerate, PermAdmin} {
		assert.False(t, p.Can(perm))
	}
	assert.False(t, p.IsAdministrator())
	assert.True(t, p.IsAnonymous())
}

func TestAvatar(t *testing.T) {
	u, err := NewUser("john", "John@Example.com", "cat", nil)
	require.NoError(t, err)
	assert.Equal(t, "d4c74594d841139328695756648b6bd6", u.AvatarHash)
	assert.Equal(t, "https://unicornify.pictures/avatar/d4c74594d841139328695756648b6bd6?s=128", u.Unicornify(0))
	assert.Equal(t, "https://unicornify.pictures/avatar/d4c74594d841139328695756648b6bd6?s=256", u.Unicornify(256))

	u.UpdateEmail("other@example.com")
	assert.NotEqual(t, "d4c74594d841139328695756648b6bd6", u.AvatarHash)
}

func TestCompositionFromJSON(t *testing.T) {
	c, err := CompositionFromJSON([]byte(`{"release_type": 2, "title": "Blue", "description": "<b>x</b>"}`))
	require.NoError(t, err)
	assert.Zero(t, c.ID)
	assert.Equal(t, ReleaseExtendedPlay, c.ReleaseType)
	assert.Equal(t, "Blue", c.Title)
	assert.Equal(t, "x", c.DescriptionHTML)
	assert.Nil(t, c.Slug)
}

func TestCompositionFromJSONValidation(t *testing.T) {
	tests := []struct {
		body  string
		field string
		msg   string
	}{
		{`{"title": "a", "description": "b"}`, "release_type", "Composition must have a release type."},
		{`{"release_type": 9, "title": "a", "description": "b"}`, "release_type", "Composition release type must be 1 (single), 2 (EP) or 3 (album)."},
		{`{"release_type": 1, "description": "b"}`, "title", "Composition must have a title."},
		{`{"release_type": 1, "title": "a"}`, "description", "Composition must have a description."},
		{`not json`, "body", "Composition payload is not valid JSON."},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := CompositionFromJSON([]byte(tt.body))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.msg, verr.Message)
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	c := NewComposition(ReleaseSingle, "Hi there!", "")
	assert.ErrorIs(t, c.GenerateSlug(), ErrSlugBeforePersist)
	assert.Equal(t, "", c.SlugString())

	c.ID = 7
	require.NoError(t, c.GenerateSlug())
	assert.Equal(t, "7-hi-there-", c.SlugString())
}

func TestSetDescriptionKeepsHTMLInSync(t *testing.T) {
	c := NewComposition(ReleaseSingle, "t", "first")
	assert.Equal(t, "first", c.DescriptionHTML)
	c.SetDescription("<i>second</i>")
	assert.Equal(t, "second", c.DescriptionHTML)

	c.Description = "third"
	require.NoError(t, c.BeforeSave(nil))
	assert.Equal(t, "third", c.DescriptionHTML)
}
