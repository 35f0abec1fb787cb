package service

import (
	"context"
	"sort"
	"sync"

	auditdomain "org-membership-service/internal/audit/domain"
	identitydomain "org-membership-service/internal/identity/domain"
	membershipdomain "org-membership-service/internal/membership/domain"
	orgdomain "org-membership-service/internal/organization/domain"
	"org-membership-service/internal/platform/apperr"
	provrepo "org-membership-service/internal/provisioning/repository"
	userdomain "org-membership-service/internal/user/domain"
)

// memDB is an in-memory store with serialized transactions that roll back on error.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users      map[string]*userdomain.User
	identities map[string]*identitydomain.Identity
	orgs       map[string]*orgdomain.Org
	members    map[string]*membershipdomain.Membership

	failMembership error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]*userdomain.User{},
		identities: map[string]*identitydomain.Identity{},
		orgs:       map[string]*orgdomain.Org{},
		members:    map[string]*membershipdomain.Membership{},
	}
}

type memSnapshot struct {
	users      map[string]*userdomain.User
	identities map[string]*identitydomain.Identity
	orgs       map[string]*orgdomain.Org
	members    map[string]*membershipdomain.Membership
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memDB) snapshot() memSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return memSnapshot{
		users:      copyMap(d.users),
		identities: copyMap(d.identities),
		orgs:       copyMap(d.orgs),
		members:    copyMap(d.members),
	}
}

func (d *memDB) restore(s memSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users, d.identities, d.orgs, d.members = s.users, s.identities, s.orgs, s.members
}

func (d *memDB) counts() (users, identities, orgs, members int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users), len(d.identities), len(d.orgs), len(d.members)
}

func (d *memDB) repos() provrepo.Repos {
	return provrepo.Repos{
		Users:       memUsers{d},
		Identities:  memIdentities{d},
		Orgs:        memOrgs{d},
		Memberships: memMembers{d},
	}
}

func (d *memDB) InTx(ctx context.Context, fn func(r provrepo.Repos) error) (err error) {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	snap := d.snapshot()
	defer func() {
		if p := recover(); p != nil {
			d.restore(snap)
			panic(p)
		}
	}()
	if err := fn(d.repos()); err != nil {
		d.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ d *memDB }

func (r memUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.users[id], nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, u := range r.d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r memUsers) Create(ctx context.Context, u *userdomain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, existing := range r.d.users {
		if existing.Email == u.Email {
			return apperr.ErrDuplicateEmail
		}
	}
	r.d.users[u.ID] = u
	return nil
}

type memIdentities struct{ d *memDB }

func (r memIdentities) GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, i := range r.d.identities {
		if i.UserID == userID && i.Provider == provider {
			return i, nil
		}
	}
	return nil, nil
}

func (r memIdentities) Create(ctx context.Context, i *identitydomain.Identity) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.identities[i.ID] = i
	return nil
}

type memOrgs struct{ d *memDB }

func (r memOrgs) GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.orgs[id], nil
}

func (r memOrgs) CreateOrganization(ctx context.Context, o *orgdomain.Org) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.orgs[o.ID] = o
	return nil
}

func (r memOrgs) ListForUser(ctx context.Context, userID string) ([]*orgdomain.Org, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []*orgdomain.Org
	for _, o := range r.d.orgs {
		if o.CreatedBy == userID {
			out = append(out, o)
			continue
		}
		if _, ok := r.d.members[memberKey(o.ID, userID)]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memMembers struct{ d *memDB }

func memberKey(orgID, userID string) string { return orgID + "/" + userID }

func (r memMembers) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.members[memberKey(orgID, userID)], nil
}

func (r memMembers) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*membershipdomain.Membership, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []*membershipdomain.Membership
	for _, m := range r.d.members {
		if m.OrgID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMembers) CreateMembership(ctx context.Context, m *membershipdomain.Membership) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failMembership != nil {
		return r.d.failMembership
	}
	key := memberKey(m.OrgID, m.UserID)
	if _, ok := r.d.members[key]; ok {
		return apperr.ErrAlreadyMember
	}
	r.d.members[key] = m
	return nil
}

type auditEvent struct {
	orgID    string
	userID   string
	action   string
	resource string
	metadata string
}

type fakeAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *fakeAudit) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{orgID, userID, action, resource, metadata})
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.action)
	}
	return out
}

type fakeMetrics struct {
	mu            sync.Mutex
	registrations int
	loginsOK      int
	loginsFailed  int
	orgsCreated   int
	membersAdded  int
}

func (m *fakeMetrics) Registration() {
	m.mu.Lock()
	m.registrations++
	m.mu.Unlock()
}

func (m *fakeMetrics) Login(success bool) {
	m.mu.Lock()
	if success {
		m.loginsOK++
	} else {
		m.loginsFailed++
	}
	m.mu.Unlock()
}

func (m *fakeMetrics) OrganizationCreated() {
	m.mu.Lock()
	m.orgsCreated++
	m.mu.Unlock()
}

func (m *fakeMetrics) MemberAdded() {
	m.mu.Lock()
	m.membersAdded++
	m.mu.Unlock()
}

type fakeAuditReader struct {
	gotOrg   string
	gotLimit int32
	gotOff   int32
	entries  []*auditdomain.AuditLog
}

func (r *fakeAuditReader) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	r.gotOrg, r.gotLimit, r.gotOff = orgID, limit, offset
	return r.entries, nil
}
