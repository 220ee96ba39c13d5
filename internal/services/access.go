package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

// AccessService decides whether an actor may act on a repository. It must be
// consulted before every ledger write and before any private-repository read.
type AccessService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAccessService(db *gorm.DB, log *zap.Logger) *AccessService {
	return &AccessService{db: db, logger: log}
}

// Authorize resolves the actor's effective role on the repository and checks
// it against required. Resolution order: owner, collaborator entry, public
// read. An empty userID is an anonymous actor and only passes the public
// read case.
func (as *AccessService) Authorize(repo *models.Repository, userID string, required models.CollaboratorRole) (models.CollaboratorRole, error) {
	if userID != "" && repo.OwnerID == userID {
		return models.RoleAdmin, nil
	}

	if userID != "" {
		var collab models.Collaborator
		err := as.db.Where("repository_id = ? AND user_id = ?", repo.ID, userID).First(&collab).Error
		if err == nil {
			if collab.Role.AtLeast(required) {
				return collab.Role, nil
			}
			as.logger.Warn("Collaborator role insufficient",
				zap.String("repository_id", repo.ID),
				zap.String("user_id", userID),
				zap.String("role", string(collab.Role)),
				zap.String("required", string(required)),
			)
			return "", apperrors.Forbidden("Insufficient permissions")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.Internal("Failed to check collaborators", err)
		}
	}

	if !repo.IsPrivate && required == models.RoleRead {
		return models.RoleRead, nil
	}

	return "", apperrors.Forbidden("Access denied")
}

// CanRead is the gate used on optional-auth read paths.
func (as *AccessService) CanRead(repo *models.Repository, userID string) error {
	if !repo.IsPrivate {
		return nil
	}
	_, err := as.Authorize(repo, userID, models.RoleRead)
	return err
}
