package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/strataform/strataform-backend/pkg/enums"
)

// TokenType distinguishes storefront principals from back-office principals.
type TokenType string

const (
	TokenTypeCompany TokenType = "company"
	TokenTypeAdmin   TokenType = "admin"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	TokenType TokenType
	Role      *enums.AdminRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	SubjectID uuid.UUID        `json:"subject_id"`
	TokenType TokenType        `json:"token_type"`
	Role      *enums.AdminRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
