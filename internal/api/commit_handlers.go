package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
)

type CommitHandler struct {
	commits *services.CommitService
	repos   *services.RepoService
	access  *services.AccessService
	logger  *zap.Logger
}

func NewCommitHandler(commits *services.CommitService, repos *services.RepoService, access *services.AccessService, log *zap.Logger) *CommitHandler {
	return &CommitHandler{commits: commits, repos: repos, access: access, logger: log}
}

// ListByRepository handles GET /api/commits/:id where :id is a repository
// id.
func (h *CommitHandler) ListByRepository(c *gin.Context) {
	repo, err := h.repos.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.access.CanRead(repo, services.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", services.DefaultPageSize)

	commits, total, err := h.commits.ListByRepository(repo.ID, c.DefaultQuery("branch", "main"), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commits":     commits,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// GetSubresource handles GET /api/commits/:id/:sub, covering three routes
// gin cannot keep apart: /commits/sha/:sha, /commits/author/:username and
// /commits/:repoId/stats.
func (h *CommitHandler) GetSubresource(c *gin.Context) {
	id := c.Param("id")
	sub := c.Param("sub")

	switch {
	case id == "sha":
		h.getBySha(c, sub)
	case id == "author":
		h.listByAuthor(c, sub)
	case sub == "stats":
		h.stats(c, id)
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	}
}

func (h *CommitHandler) getBySha(c *gin.Context, sha string) {
	commit, err := h.commits.FindBySha(sha)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if commit.Repository != nil {
		if err := h.access.CanRead(commit.Repository, services.CurrentUserID(c)); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, commit)
}

func (h *CommitHandler) listByAuthor(c *gin.Context, username string) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", services.DefaultPageSize)

	commits, total, err := h.commits.ListByAuthor(username, page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commits":     commits,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

func (h *CommitHandler) stats(c *gin.Context, repoID string) {
	repo, err := h.repos.GetByID(repoID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.access.CanRead(repo, services.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.commits.Stats(repo.ID, intQuery(c, "days", 30))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Append handles POST /api/commits. The access gate runs before the ledger
// is touched: committing requires write access on the repository.
func (h *CommitHandler) Append(c *gin.Context) {
	var dto models.CreateCommitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, h.logger, apperrors.Validation("Invalid request payload"))
		return
	}

	repo, err := h.repos.GetByID(dto.RepositoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	userID := services.CurrentUserID(c)
	if _, err := h.access.Authorize(repo, userID, models.RoleWrite); err != nil {
		if apperrors.IsKind(err, apperrors.KindForbidden) {
			err = apperrors.Forbidden("You do not have permission to commit to this repository")
		}
		respondError(c, h.logger, err)
		return
	}

	commit, err := h.commits.Append(userID, dto)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, commit)
}

// Delete handles DELETE /api/commits/:id.
func (h *CommitHandler) Delete(c *gin.Context) {
	if err := h.commits.Delete(c.Param("id"), services.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commit deleted successfully"})
}
