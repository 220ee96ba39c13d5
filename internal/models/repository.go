package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollaboratorRole orders access levels. The numeric rank is the only thing
// authorization compares; never compare the strings.
type CollaboratorRole string

const (
	RoleRead  CollaboratorRole = "read"
	RoleWrite CollaboratorRole = "write"
	RoleAdmin CollaboratorRole = "admin"
)

var roleRank = map[CollaboratorRole]int{
	RoleRead:  0,
	RoleWrite: 1,
	RoleAdmin: 2,
}

// AtLeast reports whether r grants everything required does.
func (r CollaboratorRole) AtLeast(required CollaboratorRole) bool {
	return roleRank[r] >= roleRank[required]
}

func (r CollaboratorRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Repository owns branch existence: a commit may only name a branch present
// in the Branches list. (OwnerID, Name) is unique with Name stored lowercase.
type Repository struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_owner_name" json:"name"`
	OwnerID       string           `gorm:"type:uuid;not null;uniqueIndex:idx_owner_name;index" json:"ownerId"`
	Owner         *User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Description   string           `gorm:"type:varchar(500)" json:"description"`
	IsPrivate     bool             `gorm:"default:false" json:"isPrivate"`
	Language      string           `gorm:"index" json:"language"`
	Topics        datatypes.JSON   `json:"topics"`
	DefaultBranch string           `gorm:"default:'main'" json:"defaultBranch"`
	Branches      []Branch         `gorm:"foreignKey:RepositoryID" json:"branches,omitempty"`
	Collaborators []Collaborator   `gorm:"foreignKey:RepositoryID" json:"collaborators,omitempty"`
	Stars         []*User          `gorm:"many2many:repository_stars" json:"stars,omitempty"`
	Watchers      []*User          `gorm:"many2many:repository_watchers" json:"watchers,omitempty"`
	ForkedFromID  *string          `gorm:"type:uuid;index" json:"forkedFromId,omitempty"`
	ForkedFrom    *Repository      `gorm:"foreignKey:ForkedFromID;constraint:-" json:"forkedFrom,omitempty"`
	Forks         []Repository     `gorm:"foreignKey:ForkedFromID;constraint:-" json:"forks,omitempty"`
	Size          int64            `gorm:"default:0" json:"size"`
	OpenIssues    int              `gorm:"default:0" json:"openIssues"`
	HasReadme     bool             `gorm:"default:false" json:"hasReadme"`
	License       string           `json:"license"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (r *Repository) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// Branch is a named pointer into the commit ledger. LastCommitID is nil
// until the first commit lands.
type Branch struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID string  `gorm:"type:uuid;not null;uniqueIndex:idx_repo_branch" json:"repositoryId"`
	Name         string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_repo_branch" json:"name"`
	LastCommitID *string `gorm:"type:uuid" json:"lastCommit,omitempty"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

type Collaborator struct {
	ID           string           `gorm:"type:uuid;primaryKey" json:"id"`
	RepositoryID string           `gorm:"type:uuid;not null;uniqueIndex:idx_repo_user" json:"repositoryId"`
	UserID       string           `gorm:"type:uuid;not null;uniqueIndex:idx_repo_user" json:"userId"`
	User         *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role         CollaboratorRole `gorm:"type:varchar(10);default:'read'" json:"role"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func (c *Collaborator) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

type CreateRepoDTO struct {
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description"`
	IsPrivate            bool            `json:"isPrivate"`
	Language             string          `json:"language"`
	Topics               []string        `json:"topics"`
	InitializeWithReadme bool            `json:"initializeWithReadme"`
	Files                []CreateFileDTO `json:"files"`
}

type UpdateRepoDTO struct {
	Description   *string   `json:"description"`
	IsPrivate     *bool     `json:"isPrivate"`
	Language      *string   `json:"language"`
	Topics        *[]string `json:"topics"`
	DefaultBranch *string   `json:"defaultBranch"`
}
