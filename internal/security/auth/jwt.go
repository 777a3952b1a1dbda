package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an issued token. The username travels in the
// registered subject claim; the role rides alongside for authorization.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies symmetric-key bearer tokens. A token is
// valid purely by signature and expiry; there is no server-side session
// state and no revocation list.
type TokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// DefaultExpiry matches the original deployment default of 24 hours.
const DefaultExpiry = 24 * time.Hour

func NewTokenManager(secret, issuer string, expiry time.Duration) *TokenManager {
	if issuer == "" {
		issuer = "storeinventory"
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

// Expiry returns the configured token lifetime.
func (tm *TokenManager) Expiry() time.Duration {
	return tm.expiry
}

// Generate issues a signed token asserting the username. Pure issuance,
// no credential check.
func (tm *TokenManager) Generate(username, role string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username required")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate verifies signature and expiry and returns the parsed claims.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
