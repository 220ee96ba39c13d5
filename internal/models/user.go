package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account. Followers and Following share a single join
// table read from both directions.
type User struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(39);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Avatar     string    `gorm:"type:text" json:"avatar"`
	Bio        string    `gorm:"type:varchar(160)" json:"bio"`
	Location   string    `json:"location"`
	Website    string    `json:"website"`
	Twitter    string    `json:"twitter"`
	Company    string    `json:"company"`
	IsVerified bool      `gorm:"default:false" json:"isVerified"`
	Followers  []*User   `gorm:"many2many:user_followers;joinForeignKey:UserID;joinReferences:FollowerID" json:"followers,omitempty"`
	Following  []*User   `gorm:"many2many:user_followers;joinForeignKey:FollowerID;joinReferences:UserID" json:"following,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// PublicProfile is the outward shape of a user; the credential never leaves
// the model layer.
type PublicProfile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	Website    string    `json:"website"`
	Twitter    string    `json:"twitter"`
	Company    string    `json:"company"`
	IsVerified bool      `json:"isVerified"`
	Followers  []UserRef `json:"followers"`
	Following  []UserRef `json:"following"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRef is the short author/member shape embedded in other payloads.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func (u *User) PublicProfile() PublicProfile {
	followers := make([]UserRef, 0, len(u.Followers))
	for _, f := range u.Followers {
		followers = append(followers, f.Ref())
	}
	following := make([]UserRef, 0, len(u.Following))
	for _, f := range u.Following {
		following = append(following, f.Ref())
	}
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Bio:        u.Bio,
		Location:   u.Location,
		Website:    u.Website,
		Twitter:    u.Twitter,
		Company:    u.Company,
		IsVerified: u.IsVerified,
		Followers:  followers,
		Following:  following,
		CreatedAt:  u.CreatedAt,
	}
}

type SignupDTO struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileDTO struct {
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
	Twitter  *string `json:"twitter"`
	Company  *string `json:"company"`
}
