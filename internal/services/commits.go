package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

const DefaultPageSize = 30

// CommitService is the append-only ledger of commits per (repository,
// branch). Appends are the only mutation besides owner-only deletion.
type CommitService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCommitService(db *gorm.DB, log *zap.Logger) *CommitService {
	return &CommitService{db: db, logger: log}
}

// commitSHA derives the uniqueness token: a digest of message, wall-clock
// time, author and repository, not of file content.
func commitSHA(message, authorID, repositoryID string) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s%d%s%s", message, time.Now().UnixNano(), authorID, repositoryID)
	return hex.EncodeToString(h.Sum(nil))
}

// Append validates the request, resolves the branch tip as the sole parent,
// inserts the commit and repoints the branch — all in one transaction. The
// repoint is a compare-and-swap against the tip read earlier: if a
// concurrent append moved the branch first, the update matches zero rows and
// the whole append fails with a conflict so the caller can retry.
func (cs *CommitService) Append(authorID string, dto models.CreateCommitDTO) (*models.Commit, error) {
	message := strings.TrimSpace(dto.Message)
	if message == "" {
		return nil, apperrors.Validation("Commit message is required")
	}

	var repo models.Repository
	if err := cs.db.First(&repo, "id = ?", dto.RepositoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Repository not found")
		}
		return nil, apperrors.Internal("Failed to load repository", err)
	}

	branch := dto.Branch
	if branch == "" {
		branch = "main"
	}
	var branchRow models.Branch
	err := cs.db.Where("repository_id = ? AND name = ?", repo.ID, branch).First(&branchRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.BranchNotFound(branch)
		}
		return nil, apperrors.Internal("Failed to load branch", err)
	}

	var tip *models.Commit
	var last models.Commit
	err = cs.db.Where("repository_id = ? AND branch = ?", repo.ID, branch).
		Order("created_at DESC").First(&last).Error
	if err == nil {
		tip = &last
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("Failed to resolve branch tip", err)
	}

	var files []*models.File
	if len(dto.Files) > 0 {
		if err := cs.db.Where("id IN ?", dto.Files).Find(&files).Error; err != nil {
			return nil, apperrors.Internal("Failed to load referenced files", err)
		}
	}

	commit := models.Commit{
		RepositoryID: repo.ID,
		AuthorID:     authorID,
		Message:      message,
		Branch:       branch,
		SHA:          commitSHA(message, authorID, repo.ID),
		Additions:    dto.Additions,
		Deletions:    dto.Deletions,
		ChangedFiles: len(dto.Files),
	}

	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&commit).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("A commit with this sha already exists")
			}
			return apperrors.Internal("Failed to create commit", err)
		}

		if tip != nil {
			if err := tx.Model(&commit).Association("Parents").Append(tip); err != nil {
				return apperrors.Internal("Failed to link parent commit", err)
			}
		}
		if len(files) > 0 {
			if err := tx.Model(&commit).Association("Files").Append(files); err != nil {
				return apperrors.Internal("Failed to link files", err)
			}
		}

		repoint := tx.Model(&models.Branch{}).
			Where("repository_id = ? AND name = ?", repo.ID, branch)
		if tip != nil {
			repoint = repoint.Where("last_commit_id = ?", tip.ID)
		} else {
			repoint = repoint.Where("last_commit_id IS NULL")
		}
		res := repoint.Update("last_commit_id", commit.ID)
		if res.Error != nil {
			return apperrors.Internal("Failed to update branch pointer", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Branch was updated concurrently, please retry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.logger.Info("Commit appended",
		zap.String("commit_id", commit.ID),
		zap.String("sha", commit.SHA),
		zap.String("repository_id", repo.ID),
		zap.String("branch", branch),
	)

	var populated models.Commit
	err = cs.db.Preload("Author").Preload("Parents").First(&populated, "id = ?", commit.ID).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to reload commit", err)
	}
	return &populated, nil
}

// ListByRepository pages through a branch's history, newest first.
func (cs *CommitService) ListByRepository(repositoryID, branch string, page, limit int) ([]models.Commit, int64, error) {
	if branch == "" {
		branch = "main"
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	q := cs.db.Model(&models.Commit{}).Where("repository_id = ? AND branch = ?", repositoryID, branch)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("Failed to count commits", err)
	}

	var commits []models.Commit
	err := q.Preload("Author").Preload("Parents").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&commits).Error
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list commits", err)
	}
	return commits, total, nil
}

// FindBySha resolves a single commit with its author, repository, parents
// and files.
func (cs *CommitService) FindBySha(sha string) (*models.Commit, error) {
	var commit models.Commit
	err := cs.db.
		Preload("Author").
		Preload("Repository").
		Preload("Repository.Owner").
		Preload("Parents").
		Preload("Parents.Author").
		Preload("Files").
		Where("sha = ?", sha).First(&commit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Commit not found")
		}
		return nil, apperrors.Internal("Failed to load commit", err)
	}
	return &commit, nil
}

// ListByAuthor pages through one author's commits across all repositories,
// newest first.
func (cs *CommitService) ListByAuthor(username string, page, limit int) ([]models.Commit, int64, error) {
	var user models.User
	if err := cs.db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("User not found")
		}
		return nil, 0, apperrors.Internal("Failed to look up user", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	q := cs.db.Model(&models.Commit{}).Where("author_id = ?", user.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("Failed to count commits", err)
	}

	var commits []models.Commit
	err := q.Preload("Author").Preload("Repository").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&commits).Error
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list commits", err)
	}
	return commits, total, nil
}

// Delete removes a commit record. Only the owner of the commit's repository
// may delete, and descendants' parent references are left dangling on
// purpose: nothing downstream walks chains beyond direct display.
func (cs *CommitService) Delete(commitID, actorID string) error {
	var commit models.Commit
	err := cs.db.Preload("Repository").First(&commit, "id = ?", commitID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Commit not found")
		}
		return apperrors.Internal("Failed to load commit", err)
	}

	if commit.Repository == nil || commit.Repository.OwnerID != actorID {
		return apperrors.Forbidden("Only repository owner can delete commits")
	}

	if err := cs.db.Model(&commit).Association("Parents").Clear(); err != nil {
		return apperrors.Internal("Failed to unlink parents", err)
	}
	if err := cs.db.Model(&commit).Association("Files").Clear(); err != nil {
		return apperrors.Internal("Failed to unlink files", err)
	}
	if err := cs.db.Delete(&models.Commit{}, "id = ?", commit.ID).Error; err != nil {
		return apperrors.Internal("Failed to delete commit", err)
	}

	cs.logger.Info("Commit deleted", zap.String("commit_id", commitID), zap.String("actor_id", actorID))
	return nil
}

// Stats aggregates the repository's commits over the trailing sinceDays
// window: totals, per-date buckets and the top ten contributors. Sums come
// from the stored counters, never recomputed from content. Contributor ties
// keep first-seen (chronological) order.
func (cs *CommitService) Stats(repositoryID string, sinceDays int) (*models.CommitStats, error) {
	if sinceDays < 1 {
		sinceDays = 30
	}
	dateFrom := time.Now().AddDate(0, 0, -sinceDays)

	var commits []models.Commit
	err := cs.db.Preload("Author").
		Where("repository_id = ? AND created_at >= ?", repositoryID, dateFrom).
		Order("created_at ASC").
		Find(&commits).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to load commits", err)
	}

	stats := &models.CommitStats{
		CommitsByDate:   map[string]int{},
		TopContributors: []models.ContributorStats{},
	}

	contributorIdx := map[string]int{}
	for _, commit := range commits {
		stats.TotalCommits++
		stats.TotalAdditions += commit.Additions
		stats.TotalDeletions += commit.Deletions

		date := commit.CreatedAt.UTC().Format("2006-01-02")
		stats.CommitsByDate[date]++

		username := ""
		if commit.Author != nil {
			username = commit.Author.Username
		}
		idx, ok := contributorIdx[username]
		if !ok {
			idx = len(stats.TopContributors)
			contributorIdx[username] = idx
			stats.TopContributors = append(stats.TopContributors, models.ContributorStats{Username: username})
		}
		stats.TopContributors[idx].Commits++
		stats.TopContributors[idx].Additions += commit.Additions
		stats.TopContributors[idx].Deletions += commit.Deletions
	}

	stats.Contributors = len(stats.TopContributors)

	sort.SliceStable(stats.TopContributors, func(i, j int) bool {
		return stats.TopContributors[i].Commits > stats.TopContributors[j].Commits
	})
	if len(stats.TopContributors) > 10 {
		stats.TopContributors = stats.TopContributors[:10]
	}

	return stats, nil
}
