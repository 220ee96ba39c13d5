package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
)

type RepoHandler struct {
	repos  *services.RepoService
	files  *services.FileService
	access *services.AccessService
	logger *zap.Logger
}

func NewRepoHandler(repos *services.RepoService, files *services.FileService, access *services.AccessService, log *zap.Logger) *RepoHandler {
	return &RepoHandler{repos: repos, files: files, access: access, logger: log}
}

// List handles GET /api/repos.
func (h *RepoHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	repos, total, err := h.repos.ListPublic(page, limit, c.Query("language"), c.DefaultQuery("sort", "created"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos":       repos,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// GetByID handles GET /api/repos/:id. The "search" and "trending" segments
// are dispatched here; gin cannot register a static sibling next to a path
// parameter.
func (h *RepoHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	switch id {
	case "search":
		h.Search(c)
		return
	case "trending":
		h.Trending(c)
		return
	}

	repo, err := h.repos.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.access.CanRead(repo, services.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	files, err := h.files.ListByRepository(repo.ID, "")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if files == nil {
		files = []models.File{}
	}

	c.JSON(http.StatusOK, services.RepoWithFiles{Repository: *repo, Files: files})
}

// GetSubresource handles GET /api/repos/:id/:sub; the only valid form is
// /api/repos/user/:username.
func (h *RepoHandler) GetSubresource(c *gin.Context) {
	if c.Param("id") != "user" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}

	repos, err := h.repos.ListByUser(c.Param("sub"), services.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}

// Create handles POST /api/repos.
func (h *RepoHandler) Create(c *gin.Context) {
	var dto models.CreateRepoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Repository name is required"))
		return
	}

	repo, err := h.repos.Create(services.CurrentUserID(c), dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, repo)
}

// Update handles PUT /api/repos/:id.
func (h *RepoHandler) Update(c *gin.Context) {
	var dto models.UpdateRepoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Invalid request payload"))
		return
	}

	repo, err := h.repos.Update(c.Param("id"), services.CurrentUserID(c), dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

// Delete handles DELETE /api/repos/:id.
func (h *RepoHandler) Delete(c *gin.Context) {
	if err := h.repos.Delete(c.Param("id"), services.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Repository and associated files removed successfully"})
}

// Star handles POST /api/repos/:id/star, a combined star/unstar toggle.
func (h *RepoHandler) Star(c *gin.Context) {
	starred, count, err := h.repos.ToggleStar(c.Param("id"), services.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Repository starred"
	if !starred {
		message = "Repository unstarred"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "starred": starred, "stars": count})
}

// Watch handles POST /api/repos/:id/watch, a combined watch/unwatch toggle.
func (h *RepoHandler) Watch(c *gin.Context) {
	watching, count, err := h.repos.ToggleWatch(c.Param("id"), services.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Repository watched"
	if !watching {
		message = "Repository unwatched"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "watching": watching, "watchers": count})
}

// Fork handles POST /api/repos/:id/fork. A duplicate fork responds with a
// conflict carrying the existing fork.
func (h *RepoHandler) Fork(c *gin.Context) {
	fork, err := h.repos.Fork(c.Param("id"), services.CurrentUserID(c))
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) && fork != nil {
			c.JSON(http.StatusConflict, gin.H{"message": apperrors.Message(err), "fork": fork})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, fork)
}

func (h *RepoHandler) Search(c *gin.Context) {
	repos, err := h.repos.Search(c.Query("q"), c.Query("language"), c.DefaultQuery("sort", "best-match"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}

func (h *RepoHandler) Trending(c *gin.Context) {
	repos, err := h.repos.Trending(c.Query("language"), c.DefaultQuery("since", "week"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}
