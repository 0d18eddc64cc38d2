package password

import "errors"

var (
	ErrAdminNotFound = errors.New("admin not found")
)

// Messages returned through structured results. The request-reset message is
// intentionally identical whether or not the account exists.
const (
	msgResetRequested     = "If an account exists with this email, a reset link has been sent"
	msgResetRequestFailed = "Failed to process password reset request"
	msgTokenInvalid       = "Invalid reset token"
	msgTokenUsed          = "Reset token has already been used"
	msgTokenExpired       = "Reset token has expired"
	msgAccountInactive    = "Account is not active"
	msgResetDone          = "Password has been reset successfully"
	msgChangeDone         = "Password changed successfully"
	msgWrongCurrent       = "Current password is incorrect"
)
