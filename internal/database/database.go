package database

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

// DB is the shared gorm handle, set by Connect.
var DB *gorm.DB

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// services can answer with a conflict instead of a server error.
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	log.Info("Database connection established")

	if err := Migrate(db); err != nil {
		log.Error("Failed to run migrations", zap.Error(err))
		return nil, err
	}
	log.Info("Database migrations applied")

	DB = db
	return db, nil
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Repository{},
		&models.Branch{},
		&models.Collaborator{},
		&models.File{},
		&models.Commit{},
	)
}
