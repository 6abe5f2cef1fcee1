package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/crm-service/internal/domain"
)

// ErrTokenInvalid covers any token rejection: bad signature, expiry,
// malformed claims or a principal-type mismatch. Callers must not learn
// which check failed.
var ErrTokenInvalid = errors.New("invalid token")

// TokenManager handles issuing and validating JWT tokens. Staff and portal
// tokens share the signing key but carry a principal-type claim that is
// matched exactly on validation, so the two namespaces never interchange.
type TokenManager struct {
	secret    []byte
	staffTTL  time.Duration
	portalTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, staffTTLMinutes, portalTTLMinutes int) *TokenManager {
	if staffTTLMinutes <= 0 {
		staffTTLMinutes = 60
	}
	if portalTTLMinutes <= 0 {
		portalTTLMinutes = 60
	}
	return &TokenManager{
		secret:    []byte(secret),
		staffTTL:  time.Duration(staffTTLMinutes) * time.Minute,
		portalTTL: time.Duration(portalTTLMinutes) * time.Minute,
	}
}

// Claims describes JWT payload.
type Claims struct {
	PrincipalID string               `json:"sub"`
	Principal   domain.PrincipalType `json:"principal"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the principal.
func (tm *TokenManager) GenerateToken(principalID string, principal domain.PrincipalType) (string, time.Time, error) {
	ttl := tm.staffTTL
	if principal == domain.PrincipalTypePortal {
		ttl = tm.portalTTL
	}

	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		PrincipalID: principalID,
		Principal:   principal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken verifies signature and expiry and enforces the expected
// principal type. Cross-namespace tokens are always rejected.
func (tm *TokenManager) ValidateToken(tokenStr string, expected domain.PrincipalType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Principal != expected {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseToken validates signature and expiry without pinning the namespace.
// Used by middleware that dispatches on the embedded principal type.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
