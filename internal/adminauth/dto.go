package adminauth

import (
	"github.com/strataform/strataform-backend/pkg/db/models"
)

// LoginRequest carries back-office credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminSummary is the public shape of an authenticated admin.
type AdminSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse returns the bearer pair plus both opaque session tokens.
// The opaque tokens are shown exactly once; only their hashes are stored.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	SessionToken string       `json:"session_token"`
	AdminToken   string       `json:"admin_token"`
	Admin        AdminSummary `json:"admin"`
}

func summarize(admin *models.AdminUser) AdminSummary {
	return AdminSummary{
		ID:       admin.ID.String(),
		Username: admin.Username,
		Email:    admin.Email,
		Role:     admin.Role.String(),
	}
}
