// Package handler serves readiness over HTTP and keeps the gRPC health status in step with it.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"org-membership-service/internal/platform/httpx"
)

const checkTimeout = 2 * time.Second

// Pinger checks database connectivity. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate. engine.OPAEvaluator implements it.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs the readiness probes. A nil pinger or policy checker is skipped.
type Checker struct {
	pinger Pinger
	policy PolicyChecker
	log    logrus.FieldLogger
}

// NewChecker returns a Checker.
func NewChecker(pinger Pinger, policy PolicyChecker, log logrus.FieldLogger) *Checker {
	return &Checker{pinger: pinger, policy: policy, log: log}
}

// Check returns the first failing probe's error, or nil when the service is ready.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if c.pinger != nil {
		if err := c.pinger.PingContext(ctx); err != nil {
			return err
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ServeHTTP answers 200 when ready and 503 otherwise.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := c.Check(r.Context()); err != nil {
		c.log.WithError(err).Warn("health: not ready")
		httpx.WriteErrorMessage(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "ok", nil)
}

// Watch updates hs every interval until ctx is done, setting the overall service status
// to SERVING or NOT_SERVING from Check.
func (c *Checker) Watch(ctx context.Context, hs *health.Server, interval time.Duration) {
	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		if err := c.Check(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
	}
	update()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			update()
		}
	}
}
