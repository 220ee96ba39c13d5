package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

const testSecret = "test-secret"

func TestSignupAndLogin(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testLogger(), testSecret)

	user, token, err := auth.Signup(models.SignupDTO{
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter22", user.Password, "credential must be hashed")

	loggedIn, token, err := auth.Login(models.LoginDTO{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestSignupValidation(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testLogger(), testSecret)

	cases := []models.SignupDTO{
		{Username: "", Email: "a@b.com", Password: "longenough"},
		{Username: "ok", Email: "a@b.com", Password: "longenough"},         // too short
		{Username: "alice", Email: "not-an-email", Password: "longenough"}, // bad email
		{Username: "alice", Email: "a@b.com", Password: "short"},           // short password
	}
	for _, dto := range cases {
		_, _, err := auth.Signup(dto)
		require.Error(t, err, "dto %+v must be rejected", dto)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	}
}

func TestSignupDuplicates(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testLogger(), testSecret)

	_, _, err := auth.Signup(models.SignupDTO{Username: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = auth.Signup(models.SignupDTO{Username: "other", Email: "alice@example.com", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, _, err = auth.Signup(models.SignupDTO{Username: "alice", Email: "new@example.com", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestLoginWrongCredentials(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testLogger(), testSecret)

	_, _, err := auth.Signup(models.SignupDTO{Username: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = auth.Login(models.LoginDTO{Email: "alice@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, _, err = auth.Login(models.LoginDTO{Email: "nobody@example.com", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testLogger(), testSecret)

	token, err := auth.GenerateToken("user-123")
	require.NoError(t, err)

	subject, err := auth.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)

	_, err = auth.parseToken("not.a.token")
	require.Error(t, err)
}
