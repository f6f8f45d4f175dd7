package service

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrWrongPassword       = errors.New("old password is incorrect")
	ErrEmailMismatch       = errors.New("old email does not match our records")
	ErrAlreadyConfirmed    = errors.New("account already confirmed")
	ErrResendTooSoon       = errors.New("confirmation was sent recently")
	ErrInvalidUser         = errors.New("invalid user id")
	ErrCannotUnfollowSelf  = errors.New("cannot unfollow self")
	ErrCompositionNotFound = errors.New("composition not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrRolesNotSeeded      = errors.New("roles are not seeded; run deploy")
)
