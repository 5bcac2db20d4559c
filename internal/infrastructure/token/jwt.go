// Package token verifies the JWT access tokens issued by the user-management
// service and extracts the caller's role from them.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/newunimol/attendance-service/internal/application/auth"
	"github.com/newunimol/attendance-service/internal/domain/shared"
)

// Authorizer parses and validates HS256 bearer tokens.
type Authorizer struct {
	secret []byte
}

// NewAuthorizer creates an authorizer over the shared signing secret.
func NewAuthorizer(secret string) *Authorizer {
	return &Authorizer{secret: []byte(secret)}
}

// ExtractRole validates the token and returns the role claim.
func (a *Authorizer) ExtractRole(tokenString string) (auth.Role, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", shared.WrapError("token", "ExtractRole", shared.ErrUnauthorized, "invalid token", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", shared.NewDomainError("token", "ExtractRole", shared.ErrUnauthorized, "invalid token claims")
	}

	roleClaim, _ := claims["role"].(string)
	role := auth.Role(roleClaim)
	if !role.IsValid() {
		return "", shared.NewDomainError("token", "ExtractRole", shared.ErrForbidden,
			fmt.Sprintf("unknown role %q", roleClaim))
	}
	return role, nil
}

// HasRole validates the token and reports whether it carries the role.
func (a *Authorizer) HasRole(tokenString string, role auth.Role) bool {
	got, err := a.ExtractRole(tokenString)
	return err == nil && got == role
}
