package domain

import "time"

// UserRef is the owner reference embedded in every tracked entity.
type UserRef struct {
	ID    int64  `json:"id"`
	Login string `json:"login,omitempty"`
}

type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Login: u.Login}
}
