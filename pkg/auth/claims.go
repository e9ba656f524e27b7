package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI ties the token to its refresh session; generated when empty.
	JTI string
}

// AccessTokenClaims is the admin JWT body. The user id travels as "sub" and
// is decoded into UserID by the parser.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"-"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
