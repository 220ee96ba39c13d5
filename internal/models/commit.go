package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commit is an immutable ledger record. SHA is a uniqueness token derived
// from message, time, author and repository, not a hash of file content.
// Parents reference the branch tip at append time and are never re-linked,
// even when a parent is later deleted. The repository, parent and file
// relations carry no database constraints: ledger rows outlive the
// repositories and files they reference, and a child's parent link may
// dangle.
type Commit struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID string      `gorm:"type:uuid;not null;index:idx_commit_repo_branch" json:"repositoryId"`
	Repository   *Repository `gorm:"foreignKey:RepositoryID;constraint:-" json:"repository,omitempty"`
	AuthorID     string      `gorm:"type:uuid;not null;index" json:"authorId"`
	Author       *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Message      string      `gorm:"not null" json:"message"`
	Branch       string      `gorm:"default:'main';index:idx_commit_repo_branch" json:"branch"`
	SHA          string      `gorm:"type:varchar(40);uniqueIndex;not null" json:"sha"`
	Parents      []*Commit   `gorm:"many2many:commit_parents;joinForeignKey:CommitID;joinReferences:ParentID;constraint:-" json:"parentCommits,omitempty"`
	Files        []*File     `gorm:"many2many:commit_files;constraint:-" json:"files,omitempty"`
	Additions    int         `gorm:"default:0" json:"additions"`
	Deletions    int         `gorm:"default:0" json:"deletions"`
	ChangedFiles int         `gorm:"default:0" json:"changedFiles"`
	CreatedAt    time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (c *Commit) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

type CreateCommitDTO struct {
	RepositoryID string   `json:"repositoryId" binding:"required"`
	Message      string   `json:"message"`
	Branch       string   `json:"branch"`
	Files        []string `json:"files"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
}

// ContributorStats is one row of a repository's top-contributors table.
type ContributorStats struct {
	Username  string `json:"username"`
	Commits   int    `json:"commits"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// CommitStats aggregates a repository's ledger over a trailing window.
type CommitStats struct {
	TotalCommits    int                `json:"totalCommits"`
	TotalAdditions  int                `json:"totalAdditions"`
	TotalDeletions  int                `json:"totalDeletions"`
	Contributors    int                `json:"contributors"`
	CommitsByDate   map[string]int     `json:"commitsByDate"`
	TopContributors []ContributorStats `json:"topContributors"`
}
