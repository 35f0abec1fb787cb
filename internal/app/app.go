// Package app wires configuration, storage and services into the account provisioning stack
// shared by cmd/server and cmd/seed.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"org-membership-service/internal/audit"
	auditrepo "org-membership-service/internal/audit/repository"
	"org-membership-service/internal/config"
	healthhandler "org-membership-service/internal/health/handler"
	identityhandler "org-membership-service/internal/identity/handler"
	identitysvc "org-membership-service/internal/identity/service"
	membershiphandler "org-membership-service/internal/membership/handler"
	"org-membership-service/internal/observability"
	orghandler "org-membership-service/internal/organization/handler"
	orgsvc "org-membership-service/internal/organization/service"
	"org-membership-service/internal/platform/rbac"
	"org-membership-service/internal/policy/engine"
	provrepo "org-membership-service/internal/provisioning/repository"
	provisioning "org-membership-service/internal/provisioning/service"
	"org-membership-service/internal/security"
	"org-membership-service/internal/server"
	"org-membership-service/internal/server/interceptors"
	"org-membership-service/internal/telemetry"
	telemetryotel "org-membership-service/internal/telemetry/otel"
	userhandler "org-membership-service/internal/user/handler"
)

// App is the assembled service.
type App struct {
	Provisioning *provisioning.AccountProvisioning
	Auth         *identitysvc.AuthService
	Policy       rbac.Policy
	Health       *healthhandler.Checker
	Registry     *prometheus.Registry
	Metrics      *observability.Metrics
	// Emitter forwards audit entries to OTel logs off the request path; drain it with Wait on shutdown.
	Emitter      *telemetry.AsyncEmitter

	log logrus.FieldLogger
}

// Build assembles the service over conn. loggerProvider receives audit events as OTel log
// records and may be nil.
func Build(ctx context.Context, cfg *config.Config, conn *sql.DB, log logrus.FieldLogger, loggerProvider *sdklog.LoggerProvider) (*App, error) {
	if !cfg.AuthConfigured() {
		return nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set")
	}
	priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("jwt private key: %w", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("jwt public key: %w", err)
	}
	tokens := security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	repos := provrepo.NewPostgresRepos(conn)
	identities := identitysvc.NewIdentityStore(repos.Users, repos.Identities, hasher)
	orgs := orgsvc.NewOrganizationStore(repos.Orgs, repos.Memberships)
	auth := identitysvc.NewAuthService(identities, tokens)

	var (
		policy        rbac.Policy
		policyChecker healthhandler.PolicyChecker
	)
	switch cfg.PolicyEngine {
	case config.PolicyEngineOPA:
		opa, err := engine.NewOPAEvaluator(ctx, orgs, engine.DefaultPolicy)
		if err != nil {
			return nil, fmt.Errorf("opa policy: %w", err)
		}
		policy, policyChecker = opa, opa
	default:
		policy = rbac.NewMembershipPolicy(orgs)
	}

	auditRepo := auditrepo.NewPostgresRepository(conn)
	emitter := telemetry.NewAsyncEmitter(telemetryotel.NewAuditEmitter(loggerProvider), log)
	auditLogger := audit.NewLogger(auditRepo, interceptors.ClientIPFromContext, log).WithEmitter(emitter)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	observability.RegisterDBStats(registry, conn)

	prov := provisioning.NewAccountProvisioning(provisioning.Deps{
		Tx:         provrepo.NewPostgresTransactor(conn),
		Identities: identities,
		Orgs:       orgs,
		Auth:       auth,
		Policy:     policy,
		Hasher:     hasher,
		Audit:      auditLogger,
		AuditLogs:  auditRepo,
		Metrics:    metrics,
	})

	return &App{
		Provisioning: prov,
		Auth:         auth,
		Policy:       policy,
		Health:       healthhandler.NewChecker(conn, policyChecker, log),
		Registry:     registry,
		Metrics:      metrics,
		Emitter:      emitter,
		log:          log,
	}, nil
}

// Router returns the HTTP API for the app.
func (a *App) Router(serviceName string) http.Handler {
	return server.NewRouter(server.HTTPDeps{
		Log:            a.log,
		Tokens:         a.Auth,
		Auth:           identityhandler.NewAuthHandler(a.Provisioning, a.Auth, a.log),
		Users:          userhandler.NewHandler(a.Provisioning, a.log),
		Orgs:           orghandler.NewHandler(a.Provisioning, a.log),
		Members:        membershiphandler.NewHandler(a.Provisioning, a.log),
		Health:         a.Health,
		Metrics:        a.Metrics,
		MetricsHandler: observability.Handler(a.Registry),
		ServiceName:    serviceName,
	})
}
