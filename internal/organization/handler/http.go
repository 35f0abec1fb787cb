// Package handler serves organizations and their audit trail over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	auditdomain "org-membership-service/internal/audit/domain"
	"org-membership-service/internal/organization/domain"
	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/platform/httpx"
	"org-membership-service/internal/server/interceptors"
	userdomain "org-membership-service/internal/user/domain"
)

// OrgResponse is the public JSON shape of an organization.
type OrgResponse struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewOrgResponse converts o to its JSON shape.
func NewOrgResponse(o *domain.Org) OrgResponse {
	return OrgResponse{OrgID: o.ID, Name: o.Name, Description: o.Description}
}

// AuditEntryResponse is the public JSON shape of an audit event.
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Organizations is the provisioning surface used by the organization routes.
type Organizations interface {
	ListOrganizationsForUser(ctx context.Context, requester *userdomain.User) ([]*domain.Org, error)
	CreateOrganizationForUser(ctx context.Context, requester *userdomain.User, name, description string) (*domain.Org, error)
	GetOrganizationForUser(ctx context.Context, requester *userdomain.User, orgID string) (*domain.Org, error)
	OrganizationAudit(ctx context.Context, requester *userdomain.User, orgID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// Handler serves the authenticated organization routes.
type Handler struct {
	orgs Organizations
	log  logrus.FieldLogger
}

// NewHandler returns an organization Handler.
func NewHandler(orgs Organizations, log logrus.FieldLogger) *Handler {
	return &Handler{orgs: orgs, log: log}
}

// RegisterRoutes mounts the organization routes on an authenticated router.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/api/organisations", h.list).Methods(http.MethodGet)
	protected.HandleFunc("/api/organisations", h.create).Methods(http.MethodPost)
	protected.HandleFunc("/api/organisations/{orgId}", h.get).Methods(http.MethodGet)
	protected.HandleFunc("/api/organisations/{orgId}/audit", h.audit).Methods(http.MethodGet)
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	orgs, err := h.orgs.ListOrganizationsForUser(r.Context(), requester)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	out := make([]OrgResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, NewOrgResponse(o))
	}
	httpx.WriteSuccess(w, http.StatusOK, "Organisations retrieved successfully", map[string]interface{}{
		"organisations": out,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.ParseJSON(w, r, &req); err != nil {
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	org, err := h.orgs.CreateOrganizationForUser(r.Context(), requester, req.Name, req.Description)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "Organisation created successfully", NewOrgResponse(org))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	org, err := h.orgs.GetOrganizationForUser(r.Context(), requester, httpx.PathVar(r, "orgId"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", NewOrgResponse(org))
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	limit := httpx.QueryInt32(r, "limit", 0)
	offset := httpx.QueryInt32(r, "offset", 0)
	entries, err := h.orgs.OrganizationAudit(r.Context(), requester, httpx.PathVar(r, "orgId"), limit, offset)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	httpx.WriteSuccess(w, http.StatusOK, "Audit events retrieved successfully", map[string]interface{}{
		"events": out,
		"count":  len(out),
	})
}

func (h *Handler) requester(w http.ResponseWriter, r *http.Request) (*userdomain.User, bool) {
	u, ok := interceptors.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, h.log, apperr.ErrInvalidToken)
	}
	return u, ok
}
