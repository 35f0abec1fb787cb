// Package service implements account provisioning: the composite operations that span
// identities and organizations and must commit or roll back as one unit.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"org-membership-service/internal/audit"
	auditdomain "org-membership-service/internal/audit/domain"
	identitysvc "org-membership-service/internal/identity/service"
	orgdomain "org-membership-service/internal/organization/domain"
	orgsvc "org-membership-service/internal/organization/service"
	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/platform/rbac"
	provrepo "org-membership-service/internal/provisioning/repository"
	"org-membership-service/internal/security"
	userdomain "org-membership-service/internal/user/domain"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// MetricsRecorder receives business counters. observability.Metrics implements it.
type MetricsRecorder interface {
	Registration()
	Login(success bool)
	OrganizationCreated()
	MemberAdded()
}

// AuditReader lists stored audit events for an organization.
type AuditReader interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// Deps are the collaborators of AccountProvisioning. Tx, Identities, Orgs, Auth, Policy and
// Hasher are required; the rest may be nil.
type Deps struct {
	Tx         provrepo.Transactor
	Identities *identitysvc.IdentityStore
	Orgs       *orgsvc.OrganizationStore
	Auth       *identitysvc.AuthService
	Policy     rbac.Policy
	Hasher     *security.Hasher
	Audit      audit.AuditLogger
	AuditLogs  AuditReader
	Metrics    MetricsRecorder
}

// RegisterResult is what a successful registration produced.
type RegisterResult struct {
	User  *userdomain.User
	Org   *orgdomain.Org
	Token *identitysvc.TokenPair
}

// LoginResult is what a successful login produced.
type LoginResult struct {
	User  *userdomain.User
	Token *identitysvc.TokenPair
}

// AccountProvisioning orchestrates registration, login and membership changes.
// Every identity it acts for is passed in explicitly.
type AccountProvisioning struct {
	tx         provrepo.Transactor
	identities *identitysvc.IdentityStore
	orgs       *orgsvc.OrganizationStore
	auth       *identitysvc.AuthService
	policy     rbac.Policy
	hasher     *security.Hasher
	audit      audit.AuditLogger
	auditLogs  AuditReader
	metrics    MetricsRecorder
	tracer     trace.Tracer
}

// NewAccountProvisioning returns an AccountProvisioning over d.
func NewAccountProvisioning(d Deps) *AccountProvisioning {
	p := &AccountProvisioning{
		tx:         d.Tx,
		identities: d.Identities,
		orgs:       d.Orgs,
		auth:       d.Auth,
		policy:     d.Policy,
		hasher:     d.Hasher,
		audit:      d.Audit,
		auditLogs:  d.AuditLogs,
		metrics:    d.Metrics,
		tracer:     otel.Tracer("org-membership-service/internal/provisioning/service"),
	}
	if p.metrics == nil {
		p.metrics = noopMetrics{}
	}
	return p
}

// Register creates the user, the default organization named after the user's first name,
// the user's membership in it, and an access token. Either all of it persists or none does.
// Field validation runs before the store is touched and reports every invalid field.
func (p *AccountProvisioning) Register(ctx context.Context, reg userdomain.Registration) (*RegisterResult, error) {
	ctx, span := p.startSpan(ctx, "AccountProvisioning.Register")
	defer span.End()

	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, p.fail(span, err)
	}

	var res *RegisterResult
	err := p.tx.InTx(ctx, func(r provrepo.Repos) error {
		identities := identitysvc.NewIdentityStore(r.Users, r.Identities, p.hasher)
		orgs := orgsvc.NewOrganizationStore(r.Orgs, r.Memberships)

		u, err := identities.CreateUser(ctx, reg)
		if err != nil {
			return err
		}
		org, err := orgs.CreateOrganization(ctx, u.DefaultOrganizationName(), "", u.ID)
		if err != nil {
			return fmt.Errorf("create default organization: %w", err)
		}
		if err := orgs.AddMember(ctx, org, u.ID); err != nil {
			return fmt.Errorf("add creator to default organization: %w", err)
		}
		tok, err := p.auth.IssueToken(u)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		res = &RegisterResult{User: u, Org: org, Token: tok}
		return nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	span.SetAttributes(attribute.String("user.id", res.User.ID), attribute.String("org.id", res.Org.ID))
	p.metrics.Registration()
	p.logEvent(ctx, "", res.User.ID, audit.ActionUserRegistered, audit.ResourceUser, "")
	p.logEvent(ctx, res.Org.ID, res.User.ID, audit.ActionOrgCreated, audit.ResourceOrganization, res.Org.Name)
	p.logEvent(ctx, res.Org.ID, res.User.ID, audit.ActionOrgMemberAdded, audit.ResourceOrganization, res.User.ID)
	return res, nil
}

// Login authenticates email and password and issues a token. Unknown email and wrong
// password both fail with apperr.ErrInvalidCredentials.
func (p *AccountProvisioning) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := p.startSpan(ctx, "AccountProvisioning.Login")
	defer span.End()

	v := &apperr.ValidationError{}
	if userdomain.NormalizeEmail(email) == "" {
		v.Add("email", "Email address is required")
	}
	if password == "" {
		v.Add("password", "Password is required")
	}
	if err := v.ErrOrNil(); err != nil {
		return nil, p.fail(span, err)
	}

	u, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			p.metrics.Login(false)
			p.logEvent(ctx, "", "", audit.ActionUserLoginFailed, audit.ResourceUser, userdomain.NormalizeEmail(email))
		}
		return nil, p.fail(span, err)
	}
	tok, err := p.auth.IssueToken(u)
	if err != nil {
		return nil, p.fail(span, fmt.Errorf("issue token: %w", err))
	}
	p.metrics.Login(true)
	p.logEvent(ctx, "", u.ID, audit.ActionUserLogin, audit.ResourceUser, "")
	return &LoginResult{User: u, Token: tok}, nil
}

// CreateOrganizationForUser creates an organization owned by requester. The requester is
// recorded as creator but is not added to the member set.
func (p *AccountProvisioning) CreateOrganizationForUser(ctx context.Context, requester *userdomain.User, name, description string) (*orgdomain.Org, error) {
	ctx, span := p.startSpan(ctx, "AccountProvisioning.CreateOrganizationForUser")
	defer span.End()

	if requester == nil {
		return nil, p.fail(span, apperr.ErrInvalidToken)
	}
	org, err := p.orgs.CreateOrganization(ctx, name, description, requester.ID)
	if err != nil {
		return nil, p.fail(span, err)
	}
	p.metrics.OrganizationCreated()
	p.logEvent(ctx, org.ID, requester.ID, audit.ActionOrgCreated, audit.ResourceOrganization, org.Name)
	return org, nil
}

// AddUserToOrganization adds userID to the organization's member set. It fails with
// apperr.ErrOrgNotFound, apperr.ErrUserNotFound or apperr.ErrAlreadyMember, leaving the
// member set unchanged.
func (p *AccountProvisioning) AddUserToOrganization(ctx context.Context, orgID, userID string) error {
	return p.addUserToOrganization(ctx, "", orgID, userID)
}

// AddUserToOrganizationAs is AddUserToOrganization on behalf of requester, who must be able
// to view the organization.
func (p *AccountProvisioning) AddUserToOrganizationAs(ctx context.Context, requester *userdomain.User, orgID, userID string) error {
	if requester == nil {
		return apperr.ErrInvalidToken
	}
	if userID == "" {
		return errUserIDRequired()
	}
	if _, err := p.GetOrganizationForUser(ctx, requester, orgID); err != nil {
		return err
	}
	return p.addUserToOrganization(ctx, requester.ID, orgID, userID)
}

func (p *AccountProvisioning) addUserToOrganization(ctx context.Context, actorID, orgID, userID string) error {
	ctx, span := p.startSpan(ctx, "AccountProvisioning.AddUserToOrganization")
	defer span.End()
	span.SetAttributes(attribute.String("org.id", orgID), attribute.String("user.id", userID))

	if userID == "" {
		return p.fail(span, errUserIDRequired())
	}
	err := p.tx.InTx(ctx, func(r provrepo.Repos) error {
		orgs := orgsvc.NewOrganizationStore(r.Orgs, r.Memberships)
		identities := identitysvc.NewIdentityStore(r.Users, r.Identities, p.hasher)

		org, err := orgs.FindByID(ctx, orgID)
		if err != nil {
			return err
		}
		if _, err := identities.FindByID(ctx, userID); err != nil {
			return err
		}
		return orgs.AddMember(ctx, org, userID)
	})
	if err != nil {
		return p.fail(span, err)
	}
	p.metrics.MemberAdded()
	p.logEvent(ctx, orgID, actorID, audit.ActionOrgMemberAdded, audit.ResourceOrganization, userID)
	return nil
}

// GetOrganizationForUser returns the organization when requester may view it.
func (p *AccountProvisioning) GetOrganizationForUser(ctx context.Context, requester *userdomain.User, orgID string) (*orgdomain.Org, error) {
	org, err := p.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := rbac.RequireOrgView(ctx, p.policy, requester, org); err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganizationsForUser returns the organizations requester created or belongs to.
func (p *AccountProvisioning) ListOrganizationsForUser(ctx context.Context, requester *userdomain.User) ([]*orgdomain.Org, error) {
	if requester == nil {
		return nil, apperr.ErrInvalidToken
	}
	return p.orgs.ListForUser(ctx, requester.ID)
}

// GetUserForRequester returns the user record for userID when requester is that user.
func (p *AccountProvisioning) GetUserForRequester(ctx context.Context, requester *userdomain.User, userID string) (*userdomain.User, error) {
	target, err := p.identities.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := rbac.RequireSelf(ctx, p.policy, requester, target); err != nil {
		return nil, err
	}
	return target, nil
}

// OrganizationAudit returns a page of the organization's audit trail, newest first, when
// requester may view the organization. A non-positive limit selects the default page size.
func (p *AccountProvisioning) OrganizationAudit(ctx context.Context, requester *userdomain.User, orgID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	if _, err := p.GetOrganizationForUser(ctx, requester, orgID); err != nil {
		return nil, err
	}
	if p.auditLogs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return p.auditLogs.ListByOrg(ctx, orgID, limit, offset)
}

func (p *AccountProvisioning) logEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if p.audit == nil {
		return
	}
	p.audit.LogEvent(ctx, orgID, userID, action, resource, metadata)
}

func (p *AccountProvisioning) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if p.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, name)
}

// fail records err on span and returns it unchanged.
func (p *AccountProvisioning) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func errUserIDRequired() error {
	return apperr.NewValidationError("userId", "userId field is required in the request body")
}

type noopMetrics struct{}

func (noopMetrics) Registration()        {}
func (noopMetrics) Login(bool)           {}
func (noopMetrics) OrganizationCreated() {}
func (noopMetrics) MemberAdded()         {}
