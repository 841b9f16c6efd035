package middleware

import (
	"context"
	"errors"
	"net/http"

	"go-message-board/internal/model"
	"go-message-board/internal/util"
)

// AccessTokenCookie is set on login and read when no bearer header is sent.
const AccessTokenCookie = "access_token"

type authorizer interface {
	Authorize(token string, required ...model.Role) (*model.TokenPayload, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	authorizer authorizer
}

func NewAuthMiddleware(authorizer authorizer) *AuthMiddleware {
	return &AuthMiddleware{authorizer: authorizer}
}

// RequireAuth admits any holder of a valid access token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.RequireRoles()(next)
}

// RequireRoles admits holders of a valid access token carrying at least one of
// roles. Token failures answer 401, a missing role answers 403.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	required := append([]model.Role(nil), roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
				return
			}

			claims, err := m.authorizer.Authorize(token, required...)
			switch {
			case errors.Is(err, model.ErrForbidden):
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			case errors.Is(err, model.ErrTokenExpired):
				writeAuthError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired")
				return
			case err != nil:
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.TokenPayload, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.TokenPayload)
	return claims, ok && claims != nil
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		return util.BearerToken(header)
	}

	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="board"`)
	}
	writeJSONError(w, status, code, message)
}
