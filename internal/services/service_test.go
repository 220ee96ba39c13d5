package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Repository{},
		&models.Branch{},
		&models.Collaborator{},
		&models.File{},
		&models.Commit{},
	)
	require.NoError(t, err)

	return db
}

// setupStrictTestDB opens the in-memory database with foreign key
// enforcement on, matching the posture of the postgres driver used in
// production. A single connection keeps every session on the same in-memory
// database.
func setupStrictTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Repository{},
		&models.Branch{},
		&models.Collaborator{},
		&models.File{},
		&models.Commit{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestRepo(t *testing.T, db *gorm.DB, owner *models.User, name string, private bool) *models.Repository {
	t.Helper()

	repo := models.Repository{
		Name:          name,
		OwnerID:       owner.ID,
		IsPrivate:     private,
		DefaultBranch: "main",
	}
	require.NoError(t, db.Create(&repo).Error)
	require.NoError(t, db.Create(&models.Branch{RepositoryID: repo.ID, Name: "main"}).Error)
	return &repo
}

func addCollaborator(t *testing.T, db *gorm.DB, repo *models.Repository, user *models.User, role models.CollaboratorRole) {
	t.Helper()

	require.NoError(t, db.Create(&models.Collaborator{
		RepositoryID: repo.ID,
		UserID:       user.ID,
		Role:         role,
	}).Error)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
