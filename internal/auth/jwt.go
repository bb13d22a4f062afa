package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the claims in a session token.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// SessionTokenTTL is how long an issued session token stays valid.
const SessionTokenTTL = 24 * time.Hour

var jwtSecret = []byte("docvoice-dev-secret")

// SetSecret overrides the signing secret. Called once at startup from
// the JWT_SECRET environment variable; an empty value keeps the dev
// default.
func SetSecret(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

// GenerateSessionToken generates a JWT bound to a session ID.
func GenerateSessionToken(sessionID string) (string, error) {
	claims := &SessionClaims{
		SessionID: sessionID,
		Role:      "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken validates a session token and returns its claims.
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
