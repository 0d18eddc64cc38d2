package password

type RequestResetDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyTokenDTO struct {
	Token string `json:"token" binding:"required"`
}

type ResetWithTokenDTO struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// TokenCheck is the outcome of VerifyResetToken. Message is populated only on
// failure; the token itself is unguessable so the specific reason is safe to
// disclose.
type TokenCheck struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	AdminID int64  `json:"-"`
	ResetID int64  `json:"-"`
}
