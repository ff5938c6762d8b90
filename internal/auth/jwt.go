package auth

import (
	"errors"

	"marketplace-order-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims matches the tokens minted by the auth service: uid, role, sub.
type Claims struct {
	UID  int64  `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and yields a Principal
type Verifier struct {
	signingKey []byte
}

// NewVerifier creates a verifier for HS256 tokens signed with the shared secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{signingKey: []byte(secret)}
}

// Verify parses and validates a token string, returning the caller's principal
func (v *Verifier) Verify(tokenString string) (models.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return models.Principal{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UID == 0 {
		return models.Principal{}, ErrInvalidToken
	}

	role := claims.Role
	if role != models.RoleAdmin {
		role = models.RoleUser
	}

	return models.Principal{UserID: claims.UID, Role: role}, nil
}
