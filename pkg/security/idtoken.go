// Package security contains everything related to verifying who a user is
package security

import (
	"bitwise74/file-share/pkg/validators"
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing     = errors.New("no identity token provided")
	ErrEmailNotVerified = errors.New("email address is not verified")
)

// IDTokenClaims are the claims an identity provider puts into the tokens it
// issues to signed in users
type IDTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
}

// IDTokenVerifier checks identity tokens issued by an external provider and
// extracts the verified email address
type IDTokenVerifier struct {
	keyFunc  jwt.Keyfunc
	methods  []string
	issuer   string
	audience string
}

func NewHMACVerifier(secret []byte, issuer, audience string) *IDTokenVerifier {
	return &IDTokenVerifier{
		keyFunc:  func(*jwt.Token) (any, error) { return secret, nil },
		methods:  []string{jwt.SigningMethodHS256.Alg()},
		issuer:   issuer,
		audience: audience,
	}
}

// NewRSAVerifier expects the provider's public key in PEM format
func NewRSAVerifier(pemKey []byte, issuer, audience string) (*IDTokenVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key, %w", err)
	}

	return newKeyVerifier(key, issuer, audience), nil
}

func newKeyVerifier(key *rsa.PublicKey, issuer, audience string) *IDTokenVerifier {
	return &IDTokenVerifier{
		keyFunc:  func(*jwt.Token) (any, error) { return key, nil },
		methods:  []string{jwt.SigningMethodRS256.Alg()},
		issuer:   issuer,
		audience: audience,
	}
}

// Verify returns the email address carried by token. Any problem with the
// token (bad signature, expired, wrong issuer or audience, missing or
// unverified email) results in an error.
func (v *IDTokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims IDTokenClaims

	_, err := jwt.ParseWithClaims(token, &claims, v.keyFunc, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to parse identity token, %w", err)
	}

	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return "", ErrEmailNotVerified
	}

	if err := validators.EmailValidator(claims.Email); err != nil {
		return "", err
	}

	return claims.Email, nil
}
