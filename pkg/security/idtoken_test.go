package security

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"bitwise74/file-share/pkg/validators"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("super-secret")

func sign(t *testing.T, key any, method jwt.SigningMethod, claims IDTokenClaims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return tok
}

func claimsFor(email string, ttl time.Duration) IDTokenClaims {
	return IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://issuer.example",
			Audience:  jwt.ClaimStrings{"file-share"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: email,
	}
}

func TestVerifyHMAC(t *testing.T) {
	v := NewHMACVerifier(secret, "https://issuer.example", "file-share")

	email, err := v.Verify(context.Background(), sign(t, secret, jwt.SigningMethodHS256, claimsFor("a@x.com", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestVerifyRejects(t *testing.T) {
	v := NewHMACVerifier(secret, "https://issuer.example", "file-share")
	ctx := context.Background()

	unverified := claimsFor("a@x.com", time.Hour)
	no := false
	unverified.EmailVerified = &no

	wrongAud := claimsFor("a@x.com", time.Hour)
	wrongAud.Audience = jwt.ClaimStrings{"other"}

	noExp := claimsFor("a@x.com", time.Hour)
	noExp.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMissing},
		{"malformed", "not.a.jwt", jwt.ErrTokenMalformed},
		{"expired", sign(t, secret, jwt.SigningMethodHS256, claimsFor("a@x.com", -time.Minute)), jwt.ErrTokenExpired},
		{"wrong secret", sign(t, []byte("other"), jwt.SigningMethodHS256, claimsFor("a@x.com", time.Hour)), jwt.ErrTokenSignatureInvalid},
		{"wrong audience", sign(t, secret, jwt.SigningMethodHS256, wrongAud), jwt.ErrTokenInvalidAudience},
		{"no expiry", sign(t, secret, jwt.SigningMethodHS256, noExp), jwt.ErrTokenRequiredClaimMissing},
		{"unverified email", sign(t, secret, jwt.SigningMethodHS256, unverified), ErrEmailNotVerified},
		{"no email", sign(t, secret, jwt.SigningMethodHS256, claimsFor("", time.Hour)), validators.ErrEmailEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	v, err := NewRSAVerifier(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), "", "")
	require.NoError(t, err)

	email, err := v.Verify(context.Background(), sign(t, key, jwt.SigningMethodRS256, claimsFor("b@x.com", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", email)

	// An HMAC token must not be accepted by an RSA verifier
	_, err = v.Verify(context.Background(), sign(t, secret, jwt.SigningMethodHS256, claimsFor("b@x.com", time.Hour)))
	assert.Error(t, err)
}

func TestNewRSAVerifierBadPEM(t *testing.T) {
	_, err := NewRSAVerifier([]byte("nope"), "", "")
	assert.Error(t, err)
}
