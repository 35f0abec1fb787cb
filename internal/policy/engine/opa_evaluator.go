// Package engine evaluates organization access rules with OPA Rego as an alternative to the
// native rbac.MembershipPolicy. Selected with POLICY_ENGINE=opa.
package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	orgdomain "org-membership-service/internal/organization/domain"
	userdomain "org-membership-service/internal/user/domain"
)

const (
	queryAllowView     = "data.orgs.authz.allow_view"
	queryAllowViewSelf = "data.orgs.authz.allow_view_self"
)

// DefaultPolicy grants view access to an organization's creator and members, and user-record
// access only to the user themself.
const DefaultPolicy = `package orgs.authz

default allow_view := false

allow_view if {
	input.user.id != ""
	input.user.id == input.org.created_by
}

allow_view if {
	input.user.id != ""
	input.membership.is_member
}

default allow_view_self := false

allow_view_self if {
	input.requester.id != ""
	input.requester.id == input.target.id
}
`

// MembershipChecker reports whether a user is in an organization's member set.
type MembershipChecker interface {
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// OPAEvaluator answers CanView and CanViewSelf by evaluating prepared Rego queries.
// Evaluation errors deny access and are returned to the caller.
type OPAEvaluator struct {
	members  MembershipChecker
	view     rego.PreparedEvalQuery
	viewSelf rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (DefaultPolicy when empty) and prepares both queries.
func NewOPAEvaluator(ctx context.Context, members MembershipChecker, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	prepare := func(query string) (rego.PreparedEvalQuery, error) {
		return rego.New(
			rego.Query(query),
			rego.Module("orgs_authz.rego", policy),
		).PrepareForEval(ctx)
	}
	view, err := prepare(queryAllowView)
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	viewSelf, err := prepare(queryAllowViewSelf)
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	return &OPAEvaluator{members: members, view: view, viewSelf: viewSelf}, nil
}

// HealthCheck evaluates both queries against a minimal input. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	if _, err := e.eval(ctx, e.view, map[string]interface{}{
		"user":       map[string]interface{}{"id": ""},
		"org":        map[string]interface{}{"id": "", "created_by": ""},
		"membership": map[string]interface{}{"is_member": false},
	}); err != nil {
		return err
	}
	_, err := e.eval(ctx, e.viewSelf, map[string]interface{}{
		"requester": map[string]interface{}{"id": ""},
		"target":    map[string]interface{}{"id": ""},
	})
	return err
}

// CanView evaluates allow_view for user and org. Membership is resolved before evaluation.
func (e *OPAEvaluator) CanView(ctx context.Context, user *userdomain.User, org *orgdomain.Org) (bool, error) {
	if user == nil || org == nil {
		return false, nil
	}
	isMember, err := e.members.IsMember(ctx, org.ID, user.ID)
	if err != nil {
		return false, err
	}
	return e.eval(ctx, e.view, map[string]interface{}{
		"user":       map[string]interface{}{"id": user.ID},
		"org":        map[string]interface{}{"id": org.ID, "created_by": org.CreatedBy},
		"membership": map[string]interface{}{"is_member": isMember},
	})
}

// CanViewSelf evaluates allow_view_self for requester and target.
func (e *OPAEvaluator) CanViewSelf(ctx context.Context, requester, target *userdomain.User) (bool, error) {
	if requester == nil || target == nil {
		return false, nil
	}
	return e.eval(ctx, e.viewSelf, map[string]interface{}{
		"requester": map[string]interface{}{"id": requester.ID},
		"target":    map[string]interface{}{"id": target.ID},
	})
}

func (e *OPAEvaluator) eval(ctx context.Context, q rego.PreparedEvalQuery, input map[string]interface{}) (bool, error) {
	rs, err := q.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy result is %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}
