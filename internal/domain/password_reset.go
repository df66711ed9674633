package domain

import "time"

type ResetPasswordRequest struct {
	Login       string `json:"login" validate:"required"`
	Key         string `json:"key" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=4,max=100"`
}

type PasswordResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
}
