package idtoken

import (
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/bot608/duocortex-accounts-page/pkg/errors"
)

// Claims represents the identity claims extracted from a provider ID token.
// Only the fields the unified login endpoint cares about are kept.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type rawClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Parse extracts identity claims from a provider-issued ID token without
// verifying its signature. The backend is the verifying party; this client
// only needs the profile fields to build the unified login payload.
func Parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()

	var raw rawClaims
	if _, _, err := parser.ParseUnverified(tokenString, &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, "malformed id token")
	}

	if raw.Subject == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, "id token missing subject")
	}

	return &Claims{
		Subject: raw.Subject,
		Email:   raw.Email,
		Name:    raw.Name,
		Picture: raw.Picture,
	}, nil
}
