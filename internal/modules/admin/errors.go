package admin

import "errors"

var (
	ErrAdminNotFound  = errors.New("admin not found")
	ErrInvalidRole    = errors.New("invalid admin role")
	ErrSelfDemotion   = errors.New("cannot change own role")
	ErrSelfDeactivate = errors.New("cannot deactivate own account")
)
