package services

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

// FileService is the file store: current-state content per (repository,
// path, branch). The commit ledger references file ids but never writes
// through this service.
type FileService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFileService(db *gorm.DB, log *zap.Logger) *FileService {
	return &FileService{db: db, logger: log}
}

func (fs *FileService) ListByRepository(repositoryID, branch string) ([]models.File, error) {
	var files []models.File
	q := fs.db.Where("repository_id = ?", repositoryID)
	if branch != "" {
		q = q.Where("branch = ?", branch)
	}
	if err := q.Find(&files).Error; err != nil {
		return nil, apperrors.Internal("Failed to list files", err)
	}
	return files, nil
}

func (fs *FileService) BulkInsert(files []models.File) ([]models.File, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := fs.db.Create(&files).Error; err != nil {
		fs.logger.Error("Failed to bulk insert files", zap.Error(err))
		return nil, apperrors.Internal("Failed to save files", err)
	}
	fs.logger.Info("Files saved", zap.Int("count", len(files)), zap.String("repository_id", files[0].RepositoryID))
	return files, nil
}

func (fs *FileService) DeleteAllForRepository(repositoryID string) error {
	if err := fs.db.Where("repository_id = ?", repositoryID).Delete(&models.File{}).Error; err != nil {
		fs.logger.Error("Failed to delete repository files", zap.String("repository_id", repositoryID), zap.Error(err))
		return apperrors.Internal("Failed to delete files", err)
	}
	return nil
}

// FileExtension extracts the extension from a file name, without the dot.
func FileExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 && idx < len(name)-1 {
		return name[idx+1:]
	}
	return ""
}
