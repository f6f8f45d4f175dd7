package model

const (
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"

	DefaultRoleName = RoleUser
)

type Role struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Default     bool   `gorm:"index;not null;default:false"`
	Permissions int    `gorm:"not null;default:0"`
}

func (Role) TableName() string { return "roles" }

// RolePermissions is the canonical permission set of every seeded role.
var RolePermissions = map[string][]Permission{
	RoleUser:          {PermFollow, PermReview, PermPublish},
	RoleModerator:     {PermFollow, PermReview, PermPublish, PermModerate},
	RoleAdministrator: {PermFollow, PermReview, PermPublish, PermModerate, PermAdmin},
}

// RoleOrder keeps seeding deterministic.
var RoleOrder = []string{RoleUser, RoleModerator, RoleAdministrator}

func (r *Role) HasPermission(perm Permission) bool {
	return HasPermission(r.Permissions, perm)
}

// AddPermission 幂等添加
func (r *Role) AddPermission(perm Permission) {
	if !r.HasPermission(perm) {
		r.Permissions |= int(perm)
	}
}

// RemovePermission 幂等移除
func (r *Role) RemovePermission(perm Permission) {
	if r.HasPermission(perm) {
		r.Permissions &^= int(perm)
	}
}

func (r *Role) ResetPermissions() {
	r.Permissions = 0
}
