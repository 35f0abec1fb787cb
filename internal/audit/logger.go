package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"org-membership-service/internal/audit/domain"
	auditrepo "org-membership-service/internal/audit/repository"
)

// SentinelOrgID is the org_id used for audit events that have no org (registration, login).
const SentinelOrgID = "_system"

// Actions recorded by account provisioning.
const (
	ActionUserRegistered  = "user.registered"
	ActionUserLogin       = "user.login"
	ActionUserLoginFailed = "user.login_failed"
	ActionOrgCreated      = "organization.created"
	ActionOrgMemberAdded  = "organization.member_added"
	ResourceUser          = "user"
	ResourceOrganization  = "organization"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Emitter forwards a persisted audit entry to an external sink (e.g. OTel logs).
type Emitter interface {
	Emit(ctx context.Context, entry *domain.AuditLog) error
}

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional IP extractor and an optional emitter.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	emitter     Emitter
	log         logrus.FieldLogger
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown". log may be nil.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, log logrus.FieldLogger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, log: log}
}

// WithEmitter sets an emitter that receives every entry after it is stored.
func (l *Logger) WithEmitter(e Emitter) *Logger {
	l.emitter = e
	return l
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	fields := logrus.Fields{"action": action, "resource": resource, "org_id": orgID}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.WithFields(fields).WithError(err).Warn("audit: failed to log event")
		return
	}
	if l.emitter != nil {
		if err := l.emitter.Emit(ctx, entry); err != nil {
			l.log.WithFields(fields).WithError(err).Warn("audit: emit failed")
		}
	}
}
