package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"org-membership-service/internal/audit/domain"
)

// recordEmitter is the part of otellog.Logger used by AuditEmitter.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// AuditEmitter sends audit entries as OTel log records.
type AuditEmitter struct {
	logger recordEmitter
}

// NewAuditEmitter returns an AuditEmitter backed by the given LoggerProvider.
// If provider is nil, Emit is a no-op.
func NewAuditEmitter(provider *sdklog.LoggerProvider) *AuditEmitter {
	if provider == nil {
		return &AuditEmitter{}
	}
	return &AuditEmitter{logger: provider.Logger("orgs.audit")}
}

// NewAuditEmitterWithLogger returns an AuditEmitter that writes to logger directly.
func NewAuditEmitterWithLogger(logger recordEmitter) *AuditEmitter {
	return &AuditEmitter{logger: logger}
}

// Emit converts the audit entry to an OTel log record and emits it.
func (e *AuditEmitter) Emit(ctx context.Context, entry *domain.AuditLog) error {
	if e.logger == nil || entry == nil {
		return nil
	}
	rec := otellog.Record{}
	if !entry.CreatedAt.IsZero() {
		rec.SetTimestamp(entry.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetEventName(entry.Action)
	if entry.Metadata != "" {
		rec.SetBody(otellog.StringValue(entry.Metadata))
	}
	for _, kv := range []struct{ k, v string }{
		{"audit_id", entry.ID},
		{"org_id", entry.OrgID},
		{"user_id", entry.UserID},
		{"action", entry.Action},
		{"resource", entry.Resource},
		{"ip", entry.IP},
	} {
		if kv.v != "" {
			rec.AddAttributes(otellog.String(kv.k, kv.v))
		}
	}
	e.logger.Emit(ctx, rec)
	return nil
}
