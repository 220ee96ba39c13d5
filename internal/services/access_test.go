package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, models.RoleAdmin.AtLeast(models.RoleRead))
	assert.True(t, models.RoleAdmin.AtLeast(models.RoleWrite))
	assert.True(t, models.RoleWrite.AtLeast(models.RoleRead))
	assert.False(t, models.RoleRead.AtLeast(models.RoleWrite))
	assert.False(t, models.RoleWrite.AtLeast(models.RoleAdmin))
}

func TestAuthorizePrivateRepo(t *testing.T) {
	db := setupTestDB(t)
	as := NewAccessService(db, testLogger())

	owner := createTestUser(t, db, "owner")
	reader := createTestUser(t, db, "reader")
	stranger := createTestUser(t, db, "stranger")
	repo := createTestRepo(t, db, owner, "secret", true)
	addCollaborator(t, db, repo, reader, models.RoleRead)

	role, err := as.Authorize(repo, owner.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	_, err = as.Authorize(repo, reader.ID, models.RoleWrite)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	role, err = as.Authorize(repo, reader.ID, models.RoleRead)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRead, role)

	_, err = as.Authorize(repo, stranger.ID, models.RoleRead)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestAuthorizePublicRepo(t *testing.T) {
	db := setupTestDB(t)
	as := NewAccessService(db, testLogger())

	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	repo := createTestRepo(t, db, owner, "open", false)

	role, err := as.Authorize(repo, stranger.ID, models.RoleRead)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRead, role)

	// Public visibility grants reads only, never writes.
	_, err = as.Authorize(repo, stranger.ID, models.RoleWrite)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// Anonymous readers pass on public repositories too.
	role, err = as.Authorize(repo, "", models.RoleRead)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRead, role)
}

func TestAuthorizeCollaboratorWrite(t *testing.T) {
	db := setupTestDB(t)
	as := NewAccessService(db, testLogger())

	owner := createTestUser(t, db, "owner")
	writer := createTestUser(t, db, "writer")
	repo := createTestRepo(t, db, owner, "shared", true)
	addCollaborator(t, db, repo, writer, models.RoleWrite)

	role, err := as.Authorize(repo, writer.ID, models.RoleWrite)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWrite, role)

	role, err = as.Authorize(repo, writer.ID, models.RoleRead)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWrite, role)
}

func TestAuthorizeStorageFailureStaysInternal(t *testing.T) {
	db := setupTestDB(t)
	as := NewAccessService(db, testLogger())

	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	repo := createTestRepo(t, db, owner, "secret", true)

	require.NoError(t, db.Migrator().DropTable("collaborators"))

	// A failed collaborator lookup is a server error, not a denial.
	_, err := as.Authorize(repo, stranger.ID, models.RoleWrite)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
	assert.False(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCanRead(t *testing.T) {
	db := setupTestDB(t)
	as := NewAccessService(db, testLogger())

	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	private := createTestRepo(t, db, owner, "secret", true)
	public := createTestRepo(t, db, owner, "open", false)

	assert.NoError(t, as.CanRead(public, ""))
	assert.NoError(t, as.CanRead(public, stranger.ID))
	assert.NoError(t, as.CanRead(private, owner.ID))

	err := as.CanRead(private, stranger.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = as.CanRead(private, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}
