// Package handler serves membership changes over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/platform/httpx"
	"org-membership-service/internal/server/interceptors"
	userdomain "org-membership-service/internal/user/domain"
)

// MemberAdder adds a user to an organization on behalf of a requester.
type MemberAdder interface {
	AddUserToOrganizationAs(ctx context.Context, requester *userdomain.User, orgID, userID string) error
}

// Handler serves POST /api/organisations/{orgId}/users.
type Handler struct {
	members MemberAdder
	log     logrus.FieldLogger
}

// NewHandler returns a membership Handler.
func NewHandler(members MemberAdder, log logrus.FieldLogger) *Handler {
	return &Handler{members: members, log: log}
}

// RegisterRoutes mounts the membership routes on an authenticated router.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/api/organisations/{orgId}/users", h.addUser).Methods(http.MethodPost)
}

type addUserRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	requester, ok := interceptors.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, h.log, apperr.ErrInvalidToken)
		return
	}
	var req addUserRequest
	if err := httpx.ParseJSON(w, r, &req); err != nil {
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.members.AddUserToOrganizationAs(r.Context(), requester, httpx.PathVar(r, "orgId"), req.UserID); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "User added to organization successfully", nil)
}
