// Package auth provides authentication and authorization utilities.
package auth

import (
	"fmt"
	"time"

	"github.com/examguard/integrity-backend/util"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = []byte(util.GetEnvDefault("JWT_SECRET", "change-this-in-production"))

type contextKey string

// Context keys used to carry the authenticated identity into GraphQL resolvers.
const (
	UserKey contextKey = "username"
	RoleKey contextKey = "role"
)

// Claims represents the JWT claims issued by the identity provider.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CollegeID string `json:"college_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a token for a user. Retained for integration tests
// and local development; production tokens come from the identity provider.
func GenerateJWT(userID, username, role, collegeID string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		CollegeID: collegeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "examguard",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT validates a token and returns the claims.
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
