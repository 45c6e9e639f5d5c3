package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "tactics-api"

type Claims struct {
	CustomerID int64 `json:"customer_id"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a token for a customer. expiration <= 0 means 24h.
func GenerateJWT(secret string, customerID int64, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	claims := Claims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Authenticator resolves caller tokens to customer ids.
type Authenticator struct {
	secret string
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// ResolveTenant returns the customer id carried by token. Every failure
// wraps models.ErrAuth.
func (a *Authenticator) ResolveTenant(_ context.Context, token string) (int64, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return 0, fmt.Errorf("%w: missing token", models.ErrAuth)
	}

	claims, err := ParseJWT(a.secret, token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrAuth, err)
	}
	if claims.CustomerID <= 0 {
		return 0, fmt.Errorf("%w: token carries no customer", models.ErrAuth)
	}
	return claims.CustomerID, nil
}
