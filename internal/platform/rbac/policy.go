// Package rbac decides whether a user may read an organization or a user record.
// Decisions are recomputed on every call from the current member set; nothing is cached.
package rbac

import (
	"context"

	orgdomain "org-membership-service/internal/organization/domain"
	userdomain "org-membership-service/internal/user/domain"
)

// MembershipChecker reports whether a user is in an organization's member set.
type MembershipChecker interface {
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// Policy is the access predicate used by provisioning and the HTTP handlers.
// MembershipPolicy is the native implementation; engine.OPAEvaluator evaluates the same rules in Rego.
type Policy interface {
	CanView(ctx context.Context, user *userdomain.User, org *orgdomain.Org) (bool, error)
	CanViewSelf(ctx context.Context, requester, target *userdomain.User) (bool, error)
}

// MembershipPolicy grants view access to an organization's creator and members.
type MembershipPolicy struct {
	members MembershipChecker
}

// NewMembershipPolicy returns a MembershipPolicy that resolves membership through members.
func NewMembershipPolicy(members MembershipChecker) *MembershipPolicy {
	return &MembershipPolicy{members: members}
}

// CanView is true iff user created org or is in its member set.
func (p *MembershipPolicy) CanView(ctx context.Context, user *userdomain.User, org *orgdomain.Org) (bool, error) {
	if user == nil || org == nil || user.ID == "" {
		return false, nil
	}
	if user.ID == org.CreatedBy {
		return true, nil
	}
	return p.members.IsMember(ctx, org.ID, user.ID)
}

// CanViewSelf is true iff requester and target are the same user.
func (p *MembershipPolicy) CanViewSelf(_ context.Context, requester, target *userdomain.User) (bool, error) {
	return canViewSelf(requester, target), nil
}

func canViewSelf(requester, target *userdomain.User) bool {
	return requester != nil && target != nil && requester.ID != "" && requester.ID == target.ID
}
