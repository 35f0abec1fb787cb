package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	membershipdomain "org-membership-service/internal/membership/domain"
	orgdomain "org-membership-service/internal/organization/domain"
	"org-membership-service/internal/platform/apperr"
)

// OrgRepo is the minimal organization repository needed by the organization store.
type OrgRepo interface {
	GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error)
	CreateOrganization(ctx context.Context, o *orgdomain.Org) error
	ListForUser(ctx context.Context, userID string) ([]*orgdomain.Org, error)
}

// MembershipRepo is the minimal membership repository needed by the organization store.
type MembershipRepo interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*membershipdomain.Membership, error)
	CreateMembership(ctx context.Context, m *membershipdomain.Membership) error
}

// OrganizationStore is the durable record of organizations and their member sets.
type OrganizationStore struct {
	orgs    OrgRepo
	members MembershipRepo
	now     func() time.Time
}

// NewOrganizationStore returns an OrganizationStore over the given repositories.
func NewOrganizationStore(orgs OrgRepo, members MembershipRepo) *OrganizationStore {
	return &OrganizationStore{orgs: orgs, members: members, now: time.Now}
}

// CreateOrganization persists a new organization owned by createdBy with an empty member set.
// The creator is not added as a member; callers that want that call AddMember.
func (s *OrganizationStore) CreateOrganization(ctx context.Context, name, description, createdBy string) (*orgdomain.Org, error) {
	o := &orgdomain.Org{Name: name, Description: description, CreatedBy: createdBy}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.ID = uuid.New().String()
	o.CreatedAt = s.now().UTC()
	if err := s.orgs.CreateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// FindByID returns the organization for id or apperr.ErrOrgNotFound.
func (s *OrganizationStore) FindByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	if id == "" {
		return nil, apperr.ErrOrgNotFound
	}
	o, err := s.orgs.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrOrgNotFound
	}
	return o, nil
}

// AddMember adds userID to the organization's member set. Returns apperr.ErrAlreadyMember
// when the user is already present; the set is left unchanged in that case.
func (s *OrganizationStore) AddMember(ctx context.Context, org *orgdomain.Org, userID string) error {
	if org == nil {
		return apperr.ErrOrgNotFound
	}
	if userID == "" {
		return apperr.ErrUserNotFound
	}
	existing, err := s.members.GetMembershipByUserAndOrg(ctx, userID, org.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.ErrAlreadyMember
	}
	// The unique (org_id, user_id) index still guards a concurrent insert that passed the check above.
	return s.members.CreateMembership(ctx, &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     org.ID,
		CreatedAt: s.now().UTC(),
	})
}

// IsMember reports whether userID is in the organization's member set. The creator is not
// implicitly a member.
func (s *OrganizationStore) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	if orgID == "" || userID == "" {
		return false, nil
	}
	m, err := s.members.GetMembershipByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// MemberIDs returns the user ids in the organization's member set.
func (s *OrganizationStore) MemberIDs(ctx context.Context, orgID string) ([]string, error) {
	list, err := s.members.ListMembershipsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// ListForUser returns every organization userID created or belongs to, each once.
func (s *OrganizationStore) ListForUser(ctx context.Context, userID string) ([]*orgdomain.Org, error) {
	if userID == "" {
		return nil, nil
	}
	list, err := s.orgs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, o := range list {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out, nil
}
