package interceptors

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"org-membership-service/internal/platform/httpx"
	userdomain "org-membership-service/internal/user/domain"
)

const bearerPrefix = "bearer "

// TokenValidator resolves an access token to its user. identity/service.AuthService implements it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*userdomain.User, error)
}

// RequireAuth returns middleware that validates the Bearer access token from the
// Authorization header and stores the resolved user in the request context.
// Requests without a valid token are answered with 401 and never reach next.
func RequireAuth(tokens TokenValidator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				httpx.WriteErrorMessage(w, http.StatusUnauthorized, "Authentication credentials were not provided or are invalid")
				return
			}
			u, err := tokens.ValidateToken(r.Context(), token)
			if err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
