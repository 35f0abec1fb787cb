// Package handler serves user records over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/platform/httpx"
	"org-membership-service/internal/server/interceptors"
	"org-membership-service/internal/user/domain"
)

// UserResponse is the public JSON shape of a user. The credential never appears here.
type UserResponse struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// NewUserResponse converts u to its JSON shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// UserReader returns a user record on behalf of a requester.
type UserReader interface {
	GetUserForRequester(ctx context.Context, requester *domain.User, userID string) (*domain.User, error)
}

// Handler serves GET /api/users/{id}.
type Handler struct {
	users UserReader
	log   logrus.FieldLogger
}

// NewHandler returns a user Handler.
func NewHandler(users UserReader, log logrus.FieldLogger) *Handler {
	return &Handler{users: users, log: log}
}

// RegisterRoutes mounts the user routes on an authenticated router.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/api/users/{id}", h.get).Methods(http.MethodGet)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	requester, ok := interceptors.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, h.log, apperr.ErrInvalidToken)
		return
	}
	u, err := h.users.GetUserForRequester(r.Context(), requester, httpx.PathVar(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Retrieved user information successfully", map[string]interface{}{
		"user": NewUserResponse(u),
	})
}
