package interceptors

import (
	"context"
	"net"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// ClientIP is HTTP middleware that stores the caller's IP in the request context
// (X-Forwarded-For, then X-Real-IP, then the remote address).
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := firstForwarded(r.Header.Get("X-Forwarded-For"))
		if ip == "" {
			ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
		}
		if ip == "" {
			ip = hostOnly(r.RemoteAddr)
		}
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
	})
}

// ClientIPUnary is the gRPC counterpart of ClientIP, reading metadata and then the peer address.
func ClientIPUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(WithClientIP(ctx, grpcClientIP(ctx)), req)
	}
}

func grpcClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := firstForwarded(vals[0]); s != "" {
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return hostOnly(p.Addr.String())
	}
	return ""
}

func firstForwarded(v string) string {
	s := strings.TrimSpace(v)
	if i := strings.Index(s, ","); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
