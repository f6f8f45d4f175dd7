package model

// Permission is a single permission bit. Bits combine into a role's mask.
type Permission int

const (
	PermFollow   Permission = 1
	PermReview   Permission = 2
	PermPublish  Permission = 4
	PermModerate Permission = 8
	PermAdmin    Permission = 16
)

// HasPermission 判断 mask 是否包含全部 bit
func HasPermission(mask int, perm Permission) bool {
	return mask&int(perm) == int(perm)
}

// Principal is anything a permission check can be asked of: a signed-in
// user or the anonymous visitor.
type Principal interface {
	Can(perm Permission) bool
	IsAdministrator() bool
	IsAnonymous() bool
}

// AnonymousUser denies everything.
type AnonymousUser struct{}

func (AnonymousUser) Can(Permission) bool   { return false }
func (AnonymousUser) IsAdministrator() bool { return false }
func (AnonymousUser) IsAnonymous() bool     { return true }
