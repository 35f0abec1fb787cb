package interceptors

import (
	"context"

	userdomain "org-membership-service/internal/user/domain"
)

type contextKey struct{ name string }

var (
	userKey     = contextKey{"user"}
	clientIPKey = contextKey{"client_ip"}
)

// WithUser returns a context carrying the authenticated user.
// Handlers read it with UserFromContext and pass it explicitly into the core services.
func WithUser(ctx context.Context, u *userdomain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user and true if set; otherwise nil, false.
func UserFromContext(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(userKey).(*userdomain.User)
	return u, ok && u != nil
}

// WithClientIP returns a context carrying the caller's IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the caller's IP, or "" when unknown. It satisfies audit.IPExtractor.
func ClientIPFromContext(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
