package model

import "time"

// Role is the account role issued by the backend.
type Role string

const (
	RoleUser     Role = "USER"
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)

// CanManageStore reports whether the role may use the merchant surface.
func (r Role) CanManageStore() bool {
	return r == RoleMerchant || r == RoleAdmin
}

// User represents an account as returned by the backend.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginRequest is the payload for starting a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest is the payload for changing the current password.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

// ForgotPasswordRequest asks the backend to send a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset started by email.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// MessageResponse is the generic acknowledgement body used by the backend.
type MessageResponse struct {
	Message string `json:"message"`
}

// MinPasswordLength is the shortest password accepted on any password form.
const MinPasswordLength = 6

// CheckNewPassword validates a new password against its confirmation.
func CheckNewPassword(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
