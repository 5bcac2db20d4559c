package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/newunimol/attendance-service/internal/application/auth"
	"github.com/newunimol/attendance-service/internal/domain/shared"
)

// Authorizer validates a bearer token and extracts the caller's role.
type Authorizer interface {
	ExtractRole(tokenString string) (auth.Role, error)
}

// authorize parses the bearer token, extracts the role and checks it against
// the access policy for the operation. A missing or malformed Authorization
// header is a client error; a well-formed token that fails validation is
// unauthorized; a valid token with a disallowed role is forbidden.
func (s *Server) authorize(op auth.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "missing_token", "Authorization header with bearer token is required")
			return
		}

		role, err := s.deps.Authorizer.ExtractRole(tokenString)
		if err != nil {
			if errors.Is(err, shared.ErrForbidden) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "Role is not allowed to perform this operation")
				return
			}
			writeJSONError(w, http.StatusUnauthorized, "invalid_token", "Token is invalid or expired")
			return
		}

		if !auth.CanPerform(role, op) {
			writeJSONError(w, http.StatusForbidden, "forbidden", "Role is not allowed to perform this operation")
			return
		}

		next(w, r)
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
