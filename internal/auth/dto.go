package auth

import (
	"github.com/strataform/strataform-backend/pkg/db/models"
)

// LoginRequest carries storefront credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the rotation inputs.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CompanySummary is the public shape of an authenticated company.
type CompanySummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Status       string `json:"status"`
}

// LoginResponse returns the token pair plus the account summary.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Company      CompanySummary `json:"company"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func summarize(company *models.Company) CompanySummary {
	return CompanySummary{
		ID:           company.ID.String(),
		Name:         company.Name,
		ContactEmail: company.ContactEmail,
		Status:       company.Status.String(),
	}
}
