package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/contract-engine/internal/domain"
)

func issueToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")

	subject, role, err := verifier.Verify(issueToken(t, "test-secret", "u-1", "admin"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", subject)
	assert.Equal(t, "admin", role)
}

func TestJWTVerifierRejections(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")

	_, _, err := verifier.Verify(issueToken(t, "wrong-secret", "u-1", ""))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = verifier.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Expired token.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, _, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Missing subject claim.
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err = anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, _, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
