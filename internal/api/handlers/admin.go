package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/srt-studio/backend/internal/api/middleware"
	"github.com/srt-studio/backend/internal/auth"
	"github.com/srt-studio/backend/internal/db"
)

const (
	roleAdmin  = "admin"
	roleEditor = "editor"

	minPasswordLen = 8
)

// AdminHandler manages accounts and the login limiter
type AdminHandler struct {
	db           *db.Database
	loginLimiter *middleware.RateLimiter
}

func NewAdminHandler(db *db.Database, loginLimiter *middleware.RateLimiter) *AdminHandler {
	return &AdminHandler{db: db, loginLimiter: loginLimiter}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers()
	if err != nil {
		jsonError(w, "failed to list users: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, users, http.StatusOK)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser adds an account. Role defaults to editor, which can run every
// subtitle operation but not change settings.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Role == "" {
		req.Role = roleEditor
	}

	switch {
	case req.Username == "" || req.Password == "":
		jsonError(w, "username and password are required", http.StatusBadRequest)
		return
	case len(req.Password) < minPasswordLen:
		jsonError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	case req.Role != roleAdmin && req.Role != roleEditor:
		jsonError(w, "role must be admin or editor", http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	id, err := h.db.CreateUser(req.Username, hashed, req.Role)
	if errors.Is(err, db.ErrDuplicate) {
		jsonError(w, "username already exists", http.StatusConflict)
		return
	}
	if err != nil {
		jsonError(w, "failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("[admin] created %s %q", req.Role, req.Username)
	jsonResponse(w, userInfo{ID: id, Username: req.Username, Role: req.Role}, http.StatusCreated)
}

// DeleteUser removes an account other than the caller's own. The last
// admin cannot be removed.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	if claims := middleware.GetClaims(r); claims != nil && claims.UserID == id {
		jsonError(w, "cannot delete yourself", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUserByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if user.Role == roleAdmin {
		count, err := h.db.CountAdmins()
		if err != nil {
			jsonError(w, "failed to check admin count", http.StatusInternalServerError)
			return
		}
		if count <= 1 {
			jsonError(w, "cannot delete the last admin", http.StatusBadRequest)
			return
		}
	}

	if err := h.db.DeleteUser(id); err != nil {
		jsonError(w, "failed to delete user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[admin] deleted user %q", user.Username)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) RateLimits(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.loginLimiter.Status(), http.StatusOK)
}

// ClearRateLimits unblocks every client
func (h *AdminHandler) ClearRateLimits(w http.ResponseWriter, r *http.Request) {
	h.loginLimiter.Clear()
	w.WriteHeader(http.StatusNoContent)
}
