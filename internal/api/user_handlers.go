package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
)

type UserHandler struct {
	users   *services.UserService
	storage *services.StorageService
	logger  *zap.Logger
}

func NewUserHandler(users *services.UserService, storage *services.StorageService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, storage: storage, logger: log}
}

// GetByUsername handles GET /api/users/:username. The "search" segment is
// dispatched here because gin cannot register a static sibling next to a
// path parameter.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "search" {
		h.Search(c)
		return
	}

	user, err := h.users.GetProfile(username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.PublicProfile())
}

// GetSubresource handles GET /api/users/:username/:sub for followers,
// following, stats and activity.
func (h *UserHandler) GetSubresource(c *gin.Context) {
	username := c.Param("username")

	switch c.Param("sub") {
	case "followers":
		followers, err := h.users.GetFollowers(username)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, followers)
	case "following":
		following, err := h.users.GetFollowing(username)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, following)
	case "stats":
		stats, err := h.users.Stats(username)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	case "activity":
		activity, err := h.users.Activity(username)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, activity)
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	}
}

func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.users.Search(c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].PublicProfile())
	}
	c.JSON(http.StatusOK, profiles)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var dto models.UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Invalid request payload"))
		return
	}

	user, err := h.users.UpdateProfile(services.CurrentUserID(c), dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.PublicProfile())
}

// UploadAvatar handles POST /api/users/avatar: a multipart upload stored in
// MinIO, with the resulting URL saved on the user record.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, h.logger, apperrors.Validation("Failed to get the file"))
		return
	}
	if header.Size == 0 {
		respondError(c, h.logger, apperrors.Validation("The uploaded file is empty"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, apperrors.Internal("Failed to open the file", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, url, err := h.storage.UploadAvatar(file, contentType)
	if err != nil {
		respondError(c, h.logger, apperrors.Internal("Failed to upload file to storage", err))
		return
	}

	user, err := h.users.SetAvatar(services.CurrentUserID(c), url)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": user.Avatar})
}

// Follow handles POST /api/users/:username/follow where :username carries
// the target user id.
func (h *UserHandler) Follow(c *gin.Context) {
	if err := h.users.Follow(services.CurrentUserID(c), c.Param("username")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User followed successfully", "following": true})
}

// Unfollow handles DELETE /api/users/:username/follow.
func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.users.Unfollow(services.CurrentUserID(c), c.Param("username")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unfollowed successfully", "following": false})
}
