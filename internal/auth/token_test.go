package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	token, exp, err := tm.GenerateToken("user-1", domain.PrincipalTypeStaff)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), exp, 5*time.Second)

	claims, err := tm.ValidateToken(token, domain.PrincipalTypeStaff)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.PrincipalID)
	assert.Equal(t, domain.PrincipalTypeStaff, claims.Principal)
}

func TestValidateTokenRejectsCrossNamespace(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	staffToken, _, err := tm.GenerateToken("user-1", domain.PrincipalTypeStaff)
	require.NoError(t, err)
	portalToken, _, err := tm.GenerateToken("contact-1", domain.PrincipalTypePortal)
	require.NoError(t, err)

	// A staff token never passes portal validation, and vice versa.
	_, err = tm.ValidateToken(staffToken, domain.PrincipalTypePortal)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tm.ValidateToken(portalToken, domain.PrincipalTypeStaff)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Same token stays valid in its own namespace.
	_, err = tm.ValidateToken(staffToken, domain.PrincipalTypeStaff)
	assert.NoError(t, err)
	_, err = tm.ValidateToken(portalToken, domain.PrincipalTypePortal)
	assert.NoError(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)
	other := NewTokenManager("different-secret", 60, 30)

	token, _, err := other.GenerateToken("user-1", domain.PrincipalTypeStaff)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token, domain.PrincipalTypeStaff)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	claims := &Claims{
		PrincipalID: "user-1",
		Principal:   domain.PrincipalTypeStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-secret"))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token, domain.PrincipalTypeStaff)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsUnsignedAlgorithm(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	claims := &Claims{
		PrincipalID: "user-1",
		Principal:   domain.PrincipalTypeStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token, domain.PrincipalTypeStaff)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	for _, tokenStr := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := tm.ValidateToken(tokenStr, domain.PrincipalTypeStaff)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestParseTokenKeepsNamespaceClaim(t *testing.T) {
	tm := NewTokenManager("unit-secret", 60, 30)

	token, _, err := tm.GenerateToken("contact-1", domain.PrincipalTypePortal)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalTypePortal, claims.Principal)
	assert.Equal(t, "contact-1", claims.PrincipalID)
}
