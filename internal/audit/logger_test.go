package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"org-membership-service/internal/audit/domain"
)

// mockAuditRepo implements audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

type mockEmitter struct {
	got []*domain.AuditLog
	err error
}

func (m *mockEmitter) Emit(ctx context.Context, entry *domain.AuditLog) error {
	m.got = append(m.got, entry)
	return m.err
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor, nil)

	logger.LogEvent(context.Background(), "org-1", "user-1", ActionOrgMemberAdded, ResourceOrganization, `{"memberId":"user-2"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.OrgID != "org-1" {
		t.Errorf("org_id = %q, want %q", entry.OrgID, "org-1")
	}
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Action != ActionOrgMemberAdded {
		t.Errorf("action = %q", entry.Action)
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "org-1", "user-1", "action", "resource", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", repo.entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_SentinelOrgID(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "", "user-1", ActionUserLogin, ResourceUser, "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].OrgID != SentinelOrgID {
		t.Errorf("org_id = %q, want %q", repo.entries[0].OrgID, SentinelOrgID)
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	log, hook := test.NewNullLogger()
	em := &mockEmitter{}
	logger := NewLogger(repo, nil, log).WithEmitter(em)

	logger.LogEvent(context.Background(), "org-1", "user-1", "action", "resource", "")

	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected one warning, got %d entries", len(hook.Entries))
	}
	if len(em.got) != 0 {
		t.Error("emitter must not receive entries that failed to persist")
	}
}

func TestLogger_LogEvent_Emitter(t *testing.T) {
	repo := &mockAuditRepo{}
	log, hook := test.NewNullLogger()
	em := &mockEmitter{err: errors.New("collector down")}
	NewLogger(repo, nil, log).WithEmitter(em).LogEvent(context.Background(), "", "u1", ActionUserRegistered, ResourceUser, "")

	if len(em.got) != 1 || em.got[0] != repo.entries[0] {
		t.Fatalf("emitter got %d entries", len(em.got))
	}
	if len(hook.Entries) != 1 {
		t.Errorf("emit failure should be logged, got %d entries", len(hook.Entries))
	}
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil, nil)
	// no-op when repo is nil
	logger.LogEvent(context.Background(), "org-1", "user-1", "action", "resource", "")
}
