package rbac

import (
	"context"

	orgdomain "org-membership-service/internal/organization/domain"
	"org-membership-service/internal/platform/apperr"
	userdomain "org-membership-service/internal/user/domain"
)

// RequireOrgView returns nil when policy lets user view org, apperr.ErrPermissionDenied when it
// does not, and the policy's error when the decision could not be made.
func RequireOrgView(ctx context.Context, policy Policy, user *userdomain.User, org *orgdomain.Org) error {
	ok, err := policy.CanView(ctx, user, org)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrPermissionDenied
	}
	return nil
}

// RequireSelf returns nil when requester may view target's account record and apperr.ErrPermissionDenied otherwise.
func RequireSelf(ctx context.Context, policy Policy, requester, target *userdomain.User) error {
	ok, err := policy.CanViewSelf(ctx, requester, target)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrPermissionDenied
	}
	return nil
}
