package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
)

// File holds the current state of one path on one branch. Content is not
// snapshotted per commit; commits only reference file ids.
type File struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID string    `gorm:"type:uuid;not null;index:idx_file_identity" json:"repositoryId"`
	Path         string    `gorm:"not null;index:idx_file_identity" json:"path"`
	Name         string    `gorm:"not null" json:"name"`
	Type         FileType  `gorm:"type:varchar(10);default:'file'" json:"type"`
	Content      string    `gorm:"type:text" json:"content"`
	Size         int64     `gorm:"default:0" json:"size"`
	Encoding     string    `gorm:"default:'utf-8'" json:"encoding"`
	Language     string    `json:"language"`
	Extension    string    `json:"extension"`
	Branch       string    `gorm:"default:'main';index:idx_file_identity" json:"branch"`
	LastCommitID *string   `gorm:"type:uuid" json:"lastCommit,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (f *File) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}

type CreateFileDTO struct {
	Name      string `json:"name" binding:"required"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Language  string `json:"language"`
	Extension string `json:"extension"`
}
