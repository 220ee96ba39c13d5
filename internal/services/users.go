package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

// UserService covers profiles, the follow graph and per-user aggregates.
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, logger: log}
}

func (us *UserService) findByUsername(username string, preloads ...string) (*models.User, error) {
	var user models.User
	q := us.db.Where("username = ?", strings.ToLower(username))
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}
	return &user, nil
}

func (us *UserService) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := us.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}
	return &user, nil
}

func (us *UserService) GetProfile(username string) (*models.User, error) {
	return us.findByUsername(username, "Followers", "Following")
}

// UpdateProfile merges the provided profile fields into the caller's record.
func (us *UserService) UpdateProfile(userID string, dto models.UpdateProfileDTO) (*models.User, error) {
	user, err := us.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if dto.Bio != nil {
		user.Bio = *dto.Bio
	}
	if dto.Location != nil {
		user.Location = *dto.Location
	}
	if dto.Website != nil {
		user.Website = *dto.Website
	}
	if dto.Twitter != nil {
		user.Twitter = *dto.Twitter
	}
	if dto.Company != nil {
		user.Company = *dto.Company
	}

	if err := us.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("Failed to update profile", err)
	}
	return user, nil
}

// SetAvatar stores the avatar URL produced by the object store.
func (us *UserService) SetAvatar(userID, url string) (*models.User, error) {
	user, err := us.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Avatar = url
	if err := us.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("Failed to update avatar", err)
	}
	return user, nil
}

// Follow adds the target to the caller's following set. Self-follow and
// duplicate follow are rejected.
func (us *UserService) Follow(followerID, targetID string) error {
	if followerID == targetID {
		return apperrors.Validation("Cannot follow yourself")
	}

	target, err := us.GetByID(targetID)
	if err != nil {
		return err
	}
	follower, err := us.GetByID(followerID)
	if err != nil {
		return err
	}

	var existing int64
	err = us.db.Table("user_followers").
		Where("user_id = ? AND follower_id = ?", target.ID, follower.ID).
		Count(&existing).Error
	if err != nil {
		return apperrors.Internal("Failed to check follow state", err)
	}
	if existing > 0 {
		return apperrors.Validation("Already following this user")
	}

	if err := us.db.Model(target).Association("Followers").Append(follower); err != nil {
		return apperrors.Internal("Failed to follow user", err)
	}

	us.logger.Info("User followed", zap.String("follower_id", followerID), zap.String("target_id", targetID))
	return nil
}

// Unfollow removes the follow edge; unfollowing someone not followed is a
// no-op.
func (us *UserService) Unfollow(followerID, targetID string) error {
	target, err := us.GetByID(targetID)
	if err != nil {
		return err
	}
	follower, err := us.GetByID(followerID)
	if err != nil {
		return err
	}

	if err := us.db.Model(target).Association("Followers").Delete(follower); err != nil {
		return apperrors.Internal("Failed to unfollow user", err)
	}
	return nil
}

func (us *UserService) GetFollowers(username string) ([]models.UserRef, error) {
	user, err := us.findByUsername(username, "Followers")
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(user.Followers))
	for _, f := range user.Followers {
		refs = append(refs, f.Ref())
	}
	return refs, nil
}

func (us *UserService) GetFollowing(username string) ([]models.UserRef, error) {
	user, err := us.findByUsername(username, "Following")
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(user.Following))
	for _, f := range user.Following {
		refs = append(refs, f.Ref())
	}
	return refs, nil
}

// Search matches users by substring over username, bio, company and
// location.
func (us *UserService) Search(query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("Search query is required")
	}
	pattern := "%" + strings.ToLower(query) + "%"

	var users []models.User
	err := us.db.
		Where("LOWER(username) LIKE ? OR LOWER(bio) LIKE ? OR LOWER(company) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(30).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to search users", err)
	}
	return users, nil
}

// UserStats is the aggregate shape of a user's public dashboard.
type UserStats struct {
	TotalRepos   int      `json:"totalRepos"`
	PublicRepos  int      `json:"publicRepos"`
	PrivateRepos int      `json:"privateRepos"`
	TotalStars   int64    `json:"totalStars"`
	TotalForks   int64    `json:"totalForks"`
	Followers    int64    `json:"followers"`
	Following    int64    `json:"following"`
	Languages    []string `json:"languages"`
}

func (us *UserService) Stats(username string) (*UserStats, error) {
	user, err := us.findByUsername(username)
	if err != nil {
		return nil, err
	}

	var repos []models.Repository
	if err := us.db.Where("owner_id = ?", user.ID).Find(&repos).Error; err != nil {
		return nil, apperrors.Internal("Failed to load repositories", err)
	}

	stats := &UserStats{Languages: []string{}}
	seen := map[string]bool{}
	for _, repo := range repos {
		stats.TotalRepos++
		if repo.IsPrivate {
			stats.PrivateRepos++
		} else {
			stats.PublicRepos++
		}
		if repo.Language != "" && !seen[repo.Language] {
			seen[repo.Language] = true
			stats.Languages = append(stats.Languages, repo.Language)
		}

		var stars int64
		if err := us.db.Table("repository_stars").Where("repository_id = ?", repo.ID).Count(&stars).Error; err != nil {
			return nil, apperrors.Internal("Failed to count stars", err)
		}
		stats.TotalStars += stars

		var forks int64
		if err := us.db.Model(&models.Repository{}).Where("forked_from_id = ?", repo.ID).Count(&forks).Error; err != nil {
			return nil, apperrors.Internal("Failed to count forks", err)
		}
		stats.TotalForks += forks
	}

	err = us.db.Table("user_followers").Where("user_id = ?", user.ID).Count(&stats.Followers).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to count followers", err)
	}
	err = us.db.Table("user_followers").Where("follower_id = ?", user.ID).Count(&stats.Following).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to count following", err)
	}

	return stats, nil
}

// UserActivity is a light recent-activity feed: latest repositories plus the
// join date.
type UserActivity struct {
	RecentRepos []models.Repository `json:"recentRepos"`
	JoinedDate  time.Time           `json:"joinedDate"`
}

func (us *UserService) Activity(username string) (*UserActivity, error) {
	user, err := us.findByUsername(username)
	if err != nil {
		return nil, err
	}

	var recent []models.Repository
	err = us.db.Where("owner_id = ?", user.ID).
		Order("created_at DESC").
		Limit(5).
		Select("id", "name", "description", "created_at").
		Find(&recent).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to load recent repositories", err)
	}

	return &UserActivity{RecentRepos: recent, JoinedDate: user.CreatedAt}, nil
}
