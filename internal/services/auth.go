package services

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type AuthService struct {
	db     *gorm.DB
	logger *zap.Logger
	secret []byte
}

func NewAuthService(db *gorm.DB, log *zap.Logger, secret string) *AuthService {
	return &AuthService{db: db, logger: log, secret: []byte(secret)}
}

// Signup registers an account and returns the created user plus a token.
func (s *AuthService) Signup(dto models.SignupDTO) (*models.User, string, error) {
	username := strings.ToLower(strings.TrimSpace(dto.Username))
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if username == "" || email == "" || dto.Password == "" {
		return nil, "", apperrors.Validation("Please provide username, email, and password")
	}
	if len(username) < 3 || len(username) > 39 {
		return nil, "", apperrors.Validation("Username must be between 3 and 39 characters")
	}
	if !emailRegex.MatchString(email) {
		return nil, "", apperrors.Validation("Please provide a valid email address")
	}
	if len(dto.Password) < 6 {
		return nil, "", apperrors.Validation("Password must be at least 6 characters")
	}

	var existing models.User
	err := s.db.Where("email = ? OR username = ?", email, username).First(&existing).Error
	if err == nil {
		if existing.Email == email {
			return nil, "", apperrors.Conflict("Email already registered")
		}
		return nil, "", apperrors.Conflict("Username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Internal("Failed to check existing users", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Internal("Failed to hash password", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Avatar:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", username),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.Conflict("Username or email already taken")
		}
		return nil, "", apperrors.Internal("Failed to create user", err)
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &user, token, nil
}

// Login checks credentials and returns the user plus a fresh token. Missing
// user and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(dto models.LoginDTO) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if email == "" || dto.Password == "" {
		return nil, "", apperrors.Validation("Please provide email and password")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.Forbidden("Invalid email or password")
		}
		return nil, "", apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, "", apperrors.Forbidden("Invalid email or password")
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) GenerateToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Internal("Failed to sign token", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Forbidden("Invalid or expired token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperrors.Forbidden("Invalid token claims")
	}
	return claims.Subject, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stores the caller's
// id under "userID" for the handlers.
func (s *AuthService) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}
		userID, err := s.parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present but lets
// anonymous requests through; public/private filtering happens downstream.
func (s *AuthService) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if userID, err := s.parseToken(tokenString); err == nil {
				c.Set("userID", userID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's id, or "" when anonymous.
func CurrentUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
