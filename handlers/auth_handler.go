package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/thecoder877/Vrticko/constants"
	"github.com/thecoder877/Vrticko/database"
	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/services"
	"github.com/thecoder877/Vrticko/utils"
)

// AuthHandler handles authentication
type AuthHandler struct {
	users     *database.UserRepository
	profiles  *services.ProfileCache
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *database.UserRepository, profiles *services.ProfileCache, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		users:     users,
		profiles:  profiles,
		jwtSecret: jwtSecret,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		log.Printf("❌ Login lookup failed for %s: %v", req.Email, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidCredential)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.jwtSecret)
	if err != nil {
		log.Printf("❌ Token generation failed for %s: %v", user.Email, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ User %s logged in", user.Email)
	utils.RespondJSON(w, http.StatusOK, models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; what the
// server drops is the cached profile, so a later sign-in sees fresh state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	h.profiles.Invalidate(claims.UserID)
	log.Printf("👋 User %s logged out", claims.UserID)
	utils.RespondSuccess(w, "Logged out", nil)
}
