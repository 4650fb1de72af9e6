package auth

import (
	"github.com/gestrans/gestrans-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Role    enums.Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to operators.
type AccessTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}
