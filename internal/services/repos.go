package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

var repoNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

const starCountExpr = "(SELECT COUNT(*) FROM repository_stars WHERE repository_stars.repository_id = repositories.id)"
const forkCountExpr = "(SELECT COUNT(*) FROM repositories AS f WHERE f.forked_from_id = repositories.id)"

// RepoService is the repository registry: metadata, branches, collaborators
// and the star/watch/fork relationships.
type RepoService struct {
	db     *gorm.DB
	files  *FileService
	logger *zap.Logger
}

func NewRepoService(db *gorm.DB, files *FileService, log *zap.Logger) *RepoService {
	return &RepoService{db: db, files: files, logger: log}
}

// RepoWithFiles bundles a repository with its current file tree for list
// and detail responses.
type RepoWithFiles struct {
	models.Repository
	Files []models.File `json:"files"`
}

func topicsJSON(topics []string) datatypes.JSON {
	if topics == nil {
		topics = []string{}
	}
	raw, _ := json.Marshal(topics)
	return datatypes.JSON(raw)
}

// Create registers a new repository with a single "main" branch and no
// commits. Names are stored lowercase, so per-owner uniqueness is
// case-insensitive.
func (rs *RepoService) Create(ownerID string, dto models.CreateRepoDTO) (*RepoWithFiles, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperrors.Validation("Repository name is required")
	}
	if !repoNameRegex.MatchString(name) {
		return nil, apperrors.Validation("Repository name can only contain letters, numbers, dots, hyphens, and underscores")
	}
	name = strings.ToLower(name)

	var existing models.Repository
	err := rs.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("Repository already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("Failed to check repository name", err)
	}

	repo := models.Repository{
		Name:          name,
		OwnerID:       ownerID,
		Description:   dto.Description,
		IsPrivate:     dto.IsPrivate,
		Language:      dto.Language,
		Topics:        topicsJSON(dto.Topics),
		DefaultBranch: "main",
		HasReadme:     dto.InitializeWithReadme,
	}
	if err := rs.db.Create(&repo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Repository already exists")
		}
		return nil, apperrors.Internal("Failed to create repository", err)
	}

	mainBranch := models.Branch{RepositoryID: repo.ID, Name: "main"}
	if err := rs.db.Create(&mainBranch).Error; err != nil {
		return nil, apperrors.Internal("Failed to create default branch", err)
	}
	repo.Branches = []models.Branch{mainBranch}

	var files []models.File
	for _, f := range dto.Files {
		size := f.Size
		if size == 0 {
			size = int64(len(f.Content))
		}
		language := f.Language
		if language == "" {
			language = "Text"
		}
		extension := f.Extension
		if extension == "" {
			extension = FileExtension(f.Name)
		}
		files = append(files, models.File{
			RepositoryID: repo.ID,
			Name:         f.Name,
			Path:         f.Name,
			Type:         models.FileTypeFile,
			Content:      f.Content,
			Size:         size,
			Language:     language,
			Extension:    extension,
			Branch:       "main",
		})
	}

	if dto.InitializeWithReadme {
		description := dto.Description
		if description == "" {
			description = "A new repository"
		}
		content := fmt.Sprintf("# %s\n\n%s\n\n## About\n\nThis repository was created on GitHub Clone.\n\n## Getting Started\n\nAdd your project description here.\n\n## License\n\nMIT", name, description)
		files = append(files, models.File{
			RepositoryID: repo.ID,
			Name:         "README.md",
			Path:         "README.md",
			Type:         models.FileTypeFile,
			Content:      content,
			Size:         int64(len(content)),
			Language:     "Markdown",
			Extension:    "md",
			Branch:       "main",
		})
	}

	saved, err := rs.files.BulkInsert(files)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		saved = []models.File{}
	}

	rs.logger.Info("Repository created",
		zap.String("repository_id", repo.ID),
		zap.String("owner_id", ownerID),
		zap.String("name", repo.Name),
	)

	if err := rs.db.Preload("Owner").First(&repo, "id = ?", repo.ID).Error; err != nil {
		return nil, apperrors.Internal("Failed to reload repository", err)
	}
	return &RepoWithFiles{Repository: repo, Files: saved}, nil
}

// GetByID loads a repository with its relations; access to private
// repositories is checked by the caller through the access gate.
func (rs *RepoService) GetByID(id string) (*models.Repository, error) {
	var repo models.Repository
	err := rs.db.
		Preload("Owner").
		Preload("Branches").
		Preload("Collaborators").
		Preload("Stars").
		Preload("Watchers").
		First(&repo, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Repository not found")
		}
		return nil, apperrors.Internal("Failed to load repository", err)
	}
	return &repo, nil
}

// ListPublic pages through public repositories with optional language filter
// and sort order (created, updated, stars, forks).
func (rs *RepoService) ListPublic(page, limit int, language, sort string) ([]models.Repository, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	q := rs.db.Model(&models.Repository{}).Where("is_private = ?", false)
	if language != "" {
		q = q.Where("language = ?", language)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("Failed to count repositories", err)
	}

	switch sort {
	case "stars":
		q = q.Order(starCountExpr + " DESC")
	case "forks":
		q = q.Order(forkCountExpr + " DESC")
	case "updated":
		q = q.Order("updated_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var repos []models.Repository
	err := q.Preload("Owner").Limit(limit).Offset((page - 1) * limit).Find(&repos).Error
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list repositories", err)
	}
	return repos, total, nil
}

// ListByUser returns a user's repositories with their files. Private
// repositories are included only when the viewer is the owner.
func (rs *RepoService) ListByUser(username, viewerID string) ([]RepoWithFiles, error) {
	var user models.User
	if err := rs.db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	q := rs.db.Where("owner_id = ?", user.ID)
	if viewerID != user.ID {
		q = q.Where("is_private = ?", false)
	}

	var repos []models.Repository
	if err := q.Preload("Owner").Order("updated_at DESC").Find(&repos).Error; err != nil {
		return nil, apperrors.Internal("Failed to list repositories", err)
	}

	result := make([]RepoWithFiles, 0, len(repos))
	for _, repo := range repos {
		files, err := rs.files.ListByRepository(repo.ID, "")
		if err != nil {
			return nil, err
		}
		if files == nil {
			files = []models.File{}
		}
		result = append(result, RepoWithFiles{Repository: repo, Files: files})
	}
	return result, nil
}

// Update merges the provided fields; only the owner may update.
func (rs *RepoService) Update(id, actorID string, dto models.UpdateRepoDTO) (*models.Repository, error) {
	repo, err := rs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if repo.OwnerID != actorID {
		return nil, apperrors.Forbidden("Not authorized to update this repository")
	}

	if dto.Description != nil {
		repo.Description = *dto.Description
	}
	if dto.IsPrivate != nil {
		repo.IsPrivate = *dto.IsPrivate
	}
	if dto.Language != nil {
		repo.Language = *dto.Language
	}
	if dto.Topics != nil {
		repo.Topics = topicsJSON(*dto.Topics)
	}
	if dto.DefaultBranch != nil {
		repo.DefaultBranch = *dto.DefaultBranch
	}

	if err := rs.db.Save(repo).Error; err != nil {
		return nil, apperrors.Internal("Failed to update repository", err)
	}
	return repo, nil
}

// Delete removes the repository and everything it owns: files, branches,
// collaborators and star/watch rows. Ledger entries survive deliberately;
// they stay retrievable by sha.
func (rs *RepoService) Delete(id, actorID string) error {
	repo, err := rs.GetByID(id)
	if err != nil {
		return err
	}
	if repo.OwnerID != actorID {
		return apperrors.Forbidden("Not authorized to delete this repository")
	}

	if err := rs.files.DeleteAllForRepository(repo.ID); err != nil {
		return err
	}
	if err := rs.db.Where("repository_id = ?", repo.ID).Delete(&models.Branch{}).Error; err != nil {
		return apperrors.Internal("Failed to delete branches", err)
	}
	if err := rs.db.Where("repository_id = ?", repo.ID).Delete(&models.Collaborator{}).Error; err != nil {
		return apperrors.Internal("Failed to delete collaborators", err)
	}
	if err := rs.db.Model(repo).Association("Stars").Clear(); err != nil {
		return apperrors.Internal("Failed to clear stars", err)
	}
	if err := rs.db.Model(repo).Association("Watchers").Clear(); err != nil {
		return apperrors.Internal("Failed to clear watchers", err)
	}
	if err := rs.db.Delete(&models.Repository{}, "id = ?", repo.ID).Error; err != nil {
		return apperrors.Internal("Failed to delete repository", err)
	}

	rs.logger.Info("Repository deleted", zap.String("repository_id", repo.ID), zap.String("owner_id", actorID))
	return nil
}

// ToggleStar stars the repository if the user has not starred it, unstars it
// otherwise, and returns the resulting state and star count.
func (rs *RepoService) ToggleStar(id, userID string) (bool, int64, error) {
	return rs.toggleMembership(id, userID, "Stars", "repository_stars")
}

// ToggleWatch mirrors ToggleStar for the watcher set.
func (rs *RepoService) ToggleWatch(id, userID string) (bool, int64, error) {
	return rs.toggleMembership(id, userID, "Watchers", "repository_watchers")
}

func (rs *RepoService) toggleMembership(id, userID, association, joinTable string) (bool, int64, error) {
	repo, err := rs.GetByID(id)
	if err != nil {
		return false, 0, err
	}

	var user models.User
	if err := rs.db.First(&user, "id = ?", userID).Error; err != nil {
		return false, 0, apperrors.NotFound("User not found")
	}

	var existing int64
	err = rs.db.Table(joinTable).
		Where("repository_id = ? AND user_id = ?", repo.ID, userID).
		Count(&existing).Error
	if err != nil {
		return false, 0, apperrors.Internal("Failed to check membership", err)
	}

	assoc := rs.db.Model(repo).Association(association)
	var member bool
	if existing > 0 {
		if err := assoc.Delete(&user); err != nil {
			return false, 0, apperrors.Internal("Failed to remove membership", err)
		}
		member = false
	} else {
		if err := assoc.Append(&user); err != nil {
			return false, 0, apperrors.Internal("Failed to add membership", err)
		}
		member = true
	}

	count := rs.db.Model(repo).Association(association).Count()
	return member, count, nil
}

// Fork copies a repository into the actor's namespace: files and the branch
// list (with its pointers) are copied, commit history is not. Forks are
// always public. A second fork by the same actor fails with a conflict and
// returns the existing fork.
func (rs *RepoService) Fork(id, actorID string) (*models.Repository, error) {
	source, err := rs.GetByID(id)
	if err != nil {
		return nil, err
	}

	var existingFork models.Repository
	err = rs.db.Preload("Owner").Preload("Branches").
		Where("owner_id = ? AND forked_from_id = ?", actorID, source.ID).
		First(&existingFork).Error
	if err == nil {
		return &existingFork, apperrors.Conflict("You have already forked this repository")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("Failed to check existing forks", err)
	}

	forkName := source.Name
	var sameName models.Repository
	if err := rs.db.Where("owner_id = ? AND name = ?", actorID, forkName).First(&sameName).Error; err == nil {
		forkName = source.Name + "-fork"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("Failed to check repository name", err)
	}

	fork := models.Repository{
		Name:          forkName,
		OwnerID:       actorID,
		Description:   source.Description,
		IsPrivate:     false,
		Language:      source.Language,
		Topics:        source.Topics,
		DefaultBranch: source.DefaultBranch,
		ForkedFromID:  &source.ID,
		HasReadme:     source.HasReadme,
	}
	if err := rs.db.Create(&fork).Error; err != nil {
		return nil, apperrors.Internal("Failed to create fork", err)
	}

	for _, branch := range source.Branches {
		copied := models.Branch{
			RepositoryID: fork.ID,
			Name:         branch.Name,
			LastCommitID: branch.LastCommitID,
		}
		if err := rs.db.Create(&copied).Error; err != nil {
			return nil, apperrors.Internal("Failed to copy branch", err)
		}
	}

	sourceFiles, err := rs.files.ListByRepository(source.ID, "")
	if err != nil {
		return nil, err
	}
	var copies []models.File
	for _, f := range sourceFiles {
		copies = append(copies, models.File{
			RepositoryID: fork.ID,
			Name:         f.Name,
			Path:         f.Path,
			Type:         f.Type,
			Content:      f.Content,
			Size:         f.Size,
			Language:     f.Language,
			Extension:    f.Extension,
			Branch:       f.Branch,
		})
	}
	if _, err := rs.files.BulkInsert(copies); err != nil {
		return nil, err
	}

	rs.logger.Info("Repository forked",
		zap.String("source_id", source.ID),
		zap.String("fork_id", fork.ID),
		zap.String("actor_id", actorID),
		zap.Int("files_copied", len(copies)),
	)

	var populated models.Repository
	if err := rs.db.Preload("Owner").Preload("Branches").First(&populated, "id = ?", fork.ID).Error; err != nil {
		return nil, apperrors.Internal("Failed to reload fork", err)
	}
	return &populated, nil
}

// Search matches public repositories by substring over name, description and
// topics.
func (rs *RepoService) Search(query, language, sort string) ([]models.Repository, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("Search query is required")
	}
	pattern := "%" + strings.ToLower(query) + "%"

	q := rs.db.Where("is_private = ?", false).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(CAST(topics AS TEXT)) LIKE ?", pattern, pattern, pattern)
	if language != "" {
		q = q.Where("language = ?", language)
	}

	switch sort {
	case "stars":
		q = q.Order(starCountExpr + " DESC")
	case "forks":
		q = q.Order(forkCountExpr + " DESC")
	case "updated":
		q = q.Order("updated_at DESC")
	}

	var repos []models.Repository
	if err := q.Preload("Owner").Limit(100).Find(&repos).Error; err != nil {
		return nil, apperrors.Internal("Failed to search repositories", err)
	}
	return repos, nil
}

// Trending lists public repositories created inside the window, most
// starred first.
func (rs *RepoService) Trending(language, since string) ([]models.Repository, error) {
	dateLimit := time.Now()
	switch since {
	case "day":
		dateLimit = dateLimit.AddDate(0, 0, -1)
	case "month":
		dateLimit = dateLimit.AddDate(0, -1, 0)
	default: // week
		dateLimit = dateLimit.AddDate(0, 0, -7)
	}

	q := rs.db.Where("is_private = ? AND created_at >= ?", false, dateLimit)
	if language != "" {
		q = q.Where("language = ?", language)
	}

	var repos []models.Repository
	err := q.Preload("Owner").Order(starCountExpr + " DESC").Limit(25).Find(&repos).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to load trending repositories", err)
	}
	return repos, nil
}
