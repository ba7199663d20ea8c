package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a token.
type AccessTokenPayload struct {
	UserID   int64
	PersonID int64
	UserType enums.UserType
	JTI      string
}

// AccessTokenClaims is the body of the x-access-token JWT.
type AccessTokenClaims struct {
	UserID   int64          `json:"id"`
	PersonID int64          `json:"person_id,omitempty"`
	UserType enums.UserType `json:"user_type"`
	jwt.RegisteredClaims
}
