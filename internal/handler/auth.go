package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biv3k224/ecommerce/internal/observability/metrics"
	"github.com/biv3k224/ecommerce/internal/security/audit"
	"github.com/biv3k224/ecommerce/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateResponse reports whether a presented token verifies.
type ValidateResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username and password are required"})
		return
	}

	result, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.ObserveAuthAttempt("failure")
		h.audit(r, req.Username, "login", "failure")
		writeServiceError(w, err)
		return
	}

	metrics.ObserveAuthAttempt("success")
	h.audit(r, req.Username, "login", "success")
	writeJSON(w, http.StatusOK, result)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.UserInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
		writeServiceError(w, err)
		return
	}

	h.audit(r, user.Username, "register", "success")
	writeJSON(w, http.StatusCreated, user)
}

// Validate handles POST /api/auth/validate?token=. An invalid token is a
// normal outcome, reported as valid=false with a 200.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "token is required"})
		return
	}

	username, ok := h.authService.UsernameFromToken(token)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: ok, Username: username})
}

func (h *AuthHandler) audit(r *http.Request, username, action, outcome string) {
	if h.auditLog == nil {
		return
	}
	h.auditLog.LogAction(r.Context(), username, action, "user", username, outcome, r.RemoteAddr)
}
