package docwire

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig configures bearer-token authentication.
type AuthConfig struct {
	// Enabled requires every connection to send an auth request first.
	Enabled bool

	// JWTSecret is the shared secret for HS256/384/512 validation.
	JWTSecret string

	// Issuer is the expected "iss" claim. Empty accepts any issuer.
	Issuer string
}

// identity is who a connection authenticated as.
type identity struct {
	subject   string
	expiresAt time.Time
}

func (a AuthConfig) validate(tokenString string) (identity, error) {
	if a.JWTSecret == "" {
		return identity{}, errors.New("no JWT secret configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, errors.New("invalid token claims")
	}
	if a.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != a.Issuer {
			return identity{}, fmt.Errorf("invalid issuer: expected %s, got %s", a.Issuer, issuer)
		}
	}

	var id identity
	id.subject, _ = claims.GetSubject()
	if id.subject == "" {
		id.subject, _ = claims["name"].(string)
	}
	if id.subject == "" {
		return identity{}, errors.New("token missing identity claims (sub or name)")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.expiresAt = exp.Time
	}
	return id, nil
}
