// Package handler serves registration, login and token refresh over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	identitysvc "org-membership-service/internal/identity/service"
	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/platform/httpx"
	provisioning "org-membership-service/internal/provisioning/service"
	userhandler "org-membership-service/internal/user/handler"
	userdomain "org-membership-service/internal/user/domain"
)

// Accounts is the provisioning surface used by the auth routes.
type Accounts interface {
	Register(ctx context.Context, reg userdomain.Registration) (*provisioning.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*provisioning.LoginResult, error)
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*identitysvc.TokenPair, error)
}

// AuthHandler serves the unauthenticated auth routes.
type AuthHandler struct {
	accounts Accounts
	tokens   Refresher
	log      logrus.FieldLogger
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(accounts Accounts, tokens Refresher, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, log: log}
}

// RegisterRoutes mounts the auth routes on a public router.
func (h *AuthHandler) RegisterRoutes(public *mux.Router) {
	public.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	public.HandleFunc("/api/token/refresh", h.refresh).Methods(http.MethodPost)
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authData struct {
	AccessToken  string                   `json:"accessToken"`
	RefreshToken string                   `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time                `json:"expiresAt"`
	User         userhandler.UserResponse `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.ParseJSON(w, r, &req); err != nil {
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.accounts.Register(r.Context(), userdomain.Registration{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "Registration successful", authData{
		AccessToken:  res.Token.AccessToken,
		RefreshToken: res.Token.RefreshToken,
		ExpiresAt:    res.Token.ExpiresAt,
		User:         userhandler.NewUserResponse(res.User),
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.ParseJSON(w, r, &req); err != nil {
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Login successful", authData{
		AccessToken:  res.Token.AccessToken,
		RefreshToken: res.Token.RefreshToken,
		ExpiresAt:    res.Token.ExpiresAt,
		User:         userhandler.NewUserResponse(res.User),
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.ParseJSON(w, r, &req); err != nil {
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, h.log, apperr.NewValidationError("refreshToken", "This field is required."))
		return
	}
	pair, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Token refreshed", map[string]interface{}{
		"accessToken": pair.AccessToken,
		"expiresAt":   pair.ExpiresAt,
	})
}
