package handlers

import (
	"log"
	"net/http"

	"github.com/srt-studio/backend/internal/api/middleware"
	"github.com/srt-studio/backend/internal/auth"
	"github.com/srt-studio/backend/internal/db"
	"github.com/srt-studio/backend/internal/db/models"
)

type AuthHandler struct {
	db  *db.Database
	jwt *auth.JWTService
}

func NewAuthHandler(db *db.Database, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

// userInfo is the public view of an account
type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func newUserInfo(u *models.User) userInfo {
	return userInfo{ID: u.ID, Username: u.Username, Role: u.Role}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userInfo `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	// Unknown users and wrong passwords get the same answer
	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.Password) {
		log.Printf("[auth] failed login for %q from %s", req.Username, r.RemoteAddr)
		jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		jsonError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, loginResponse{Token: token, User: newUserInfo(user)}, http.StatusOK)
}

// Me returns the account behind the token. A token for a deleted account
// is answered with 404.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.db.GetUserByID(claims.UserID)
	if err != nil {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, newUserInfo(user), http.StatusOK)
}
