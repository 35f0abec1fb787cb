// Package server assembles the HTTP router and the gRPC health server.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	identityhandler "org-membership-service/internal/identity/handler"
	membershiphandler "org-membership-service/internal/membership/handler"
	"org-membership-service/internal/observability"
	orghandler "org-membership-service/internal/organization/handler"
	"org-membership-service/internal/platform/httpx"
	"org-membership-service/internal/server/interceptors"
	userhandler "org-membership-service/internal/user/handler"
)

// HTTPDeps holds the handlers and middleware dependencies of the HTTP API.
// Metrics and MetricsHandler may be nil; Health may be nil to skip /healthz.
type HTTPDeps struct {
	Log            logrus.FieldLogger
	Tokens         interceptors.TokenValidator
	Auth           *identityhandler.AuthHandler
	Users          *userhandler.Handler
	Orgs           *orghandler.Handler
	Members        *membershiphandler.Handler
	Health         http.Handler
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
	ServiceName    string
}

// NewRouter returns the HTTP API. /auth/* and /api/token/refresh are public; every other
// /api route requires a Bearer access token.
func NewRouter(d HTTPDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(interceptors.ClientIP, interceptors.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	if d.Health != nil {
		r.Handle("/healthz", d.Health).Methods(http.MethodGet)
	}
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler).Methods(http.MethodGet)
	}
	d.Auth.RegisterRoutes(r)

	protected := r.NewRoute().Subrouter()
	protected.Use(interceptors.RequireAuth(d.Tokens, d.Log))
	d.Users.RegisterRoutes(protected)
	d.Orgs.RegisterRoutes(protected)
	d.Members.RegisterRoutes(protected)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteErrorMessage(w, http.StatusNotFound, "Not found")
	})

	name := d.ServiceName
	if name == "" {
		name = "orgs-api"
	}
	return otelhttp.NewHandler(r, name)
}
