package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestResolveTenant_ValidToken(t *testing.T) {
	token, err := GenerateJWT(testSecret, 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	a := NewAuthenticator(testSecret)
	for _, raw := range []string{token, "Bearer " + token} {
		id, err := a.ResolveTenant(context.Background(), raw)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if id != 42 {
			t.Errorf("expected customer 42, got %d", id)
		}
	}
}

func TestResolveTenant_Failures(t *testing.T) {
	wrongSecret, _ := GenerateJWT("other-secret", 42, time.Hour)
	noCustomer, _ := GenerateJWT(testSecret, 0, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CustomerID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    issuer,
		},
	})
	expiredStr, _ := expired.SignedString([]byte(testSecret))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CustomerID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	})
	foreignStr, _ := foreign.SignedString([]byte(testSecret))

	tests := map[string]string{
		"empty":        "",
		"bearer only":  "Bearer ",
		"garbage":      "not-a-jwt",
		"wrong secret": wrongSecret,
		"no customer":  noCustomer,
		"expired":      expiredStr,
		"wrong issuer": foreignStr,
	}

	a := NewAuthenticator(testSecret)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.ResolveTenant(context.Background(), token)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, models.ErrAuth) {
				t.Errorf("expected ErrAuth, got: %v", err)
			}
		})
	}
}
