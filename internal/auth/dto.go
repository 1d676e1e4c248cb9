package auth

import (
	"github.com/redreserve/redreserve-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6,max=128"`
	BloodGroup *string `json:"bloodGroup,omitempty" validate:"omitempty,bloodgroup"`
}

// LoginResponse contains the issued token pair and the account.
type LoginResponse struct {
	User         *users.UserDTO `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}
