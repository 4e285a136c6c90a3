package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/service"
)

type AuthHandler struct {
	auth    AuthService
	timeout time.Duration
}

func NewAuthHandler(auth AuthService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		timeout: timeout,
	}
}

type SignUpRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Img      string `json:"img"`
}

type SignInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/user/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignUpRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.SignUp(ctx, service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Img:      req.Img,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// POST /api/v1/user/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignInRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	res, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}
