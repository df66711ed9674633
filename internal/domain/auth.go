package domain

type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type TokenResponse struct {
	IDToken string `json:"id_token"`
}

type RegisterRequest struct {
	Login    string `json:"login" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=4,max=100"`
}

type Account struct {
	ID    int64   `json:"id"`
	Login string  `json:"login"`
	Email *string `json:"email,omitempty"`
}
