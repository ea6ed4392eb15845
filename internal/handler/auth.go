package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderfood/api/internal/auth"
	"github.com/orderfood/api/internal/enum"
	"github.com/orderfood/api/internal/remote"
)

// CredentialChecker verifies credentials against the customer service.
// Satisfied by *remote.OrdersClient; narrow interface for testability.
type CredentialChecker interface {
	Login(ctx context.Context, email, password string) (*remote.Customer, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	customers CredentialChecker
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(customers CredentialChecker, jwtSecret string) *AuthHandler {
	return &AuthHandler{customers: customers, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string           `json:"access_token"`
	Customer    *remote.Customer `json:"customer"`
}

// Login proxies email + password to the customer service and mints a local
// session token on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	customer, err := h.customers.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch remote.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusNotFound:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, http.StatusBadGateway, "login service unavailable")
		}
		return
	}

	role := customer.Role
	if role == "" {
		role = enum.RoleCustomer
	}
	token, err := auth.GenerateToken(h.jwtSecret, customer.ID, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, Customer: customer})
}
