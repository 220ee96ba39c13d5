package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
)

type AuthHandler struct {
	auth   *services.AuthService
	users  *services.UserService
	logger *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, users *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, logger: log}
}

func sessionResponse(user *models.User, token string) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"avatar":   user.Avatar,
		"bio":      user.Bio,
		"token":    token,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var dto models.SignupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Please provide username, email, and password"))
		return
	}

	user, token, err := h.auth.Signup(dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(user, token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var dto models.LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Please provide email and password"))
		return
	}

	user, token, err := h.auth.Login(dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(user, token))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := services.CurrentUserID(c)
	user, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.PublicProfile())
}
