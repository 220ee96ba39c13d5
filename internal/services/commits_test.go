package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellaleprasann20/Github-Clone/internal/apperrors"
	"github.com/bellaleprasann20/Github-Clone/internal/models"
)

func TestAppendRootCommit(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	commit, err := cs.Append(author.ID, models.CreateCommitDTO{
		RepositoryID: repo.ID,
		Message:      "Initial commit",
		Branch:       "main",
		Additions:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, "Initial commit", commit.Message)
	assert.Equal(t, "main", commit.Branch)
	assert.Len(t, commit.SHA, 40)
	assert.Empty(t, commit.Parents)
	require.NotNil(t, commit.Author)
	assert.Equal(t, "alice", commit.Author.Username)

	var branch models.Branch
	require.NoError(t, db.Where("repository_id = ? AND name = ?", repo.ID, "main").First(&branch).Error)
	require.NotNil(t, branch.LastCommitID)
	assert.Equal(t, commit.ID, *branch.LastCommitID)
}

func TestAppendLinksPreviousTipAsParent(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	first, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "first"})
	require.NoError(t, err)

	second, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "second"})
	require.NoError(t, err)

	require.Len(t, second.Parents, 1)
	assert.Equal(t, first.ID, second.Parents[0].ID)
	assert.Equal(t, repo.ID, second.Parents[0].RepositoryID)
}

func TestAppendEmptyMessageRejected(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	_, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "   \t  "})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	var count int64
	require.NoError(t, db.Model(&models.Commit{}).Count(&count).Error)
	assert.Zero(t, count)

	var branch models.Branch
	require.NoError(t, db.Where("repository_id = ?", repo.ID).First(&branch).Error)
	assert.Nil(t, branch.LastCommitID)
}

func TestAppendUnknownRepository(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")

	_, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: "00000000-0000-0000-0000-000000000000", Message: "hello"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAppendUnknownBranch(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	_, err := cs.Append(author.ID, models.CreateCommitDTO{
		RepositoryID: repo.ID,
		Message:      "hello",
		Branch:       "develop",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBranchNotFound))

	var count int64
	require.NoError(t, db.Model(&models.Commit{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppendConcurrentRepointConflict(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	first, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "first"})
	require.NoError(t, err)

	// Move the pointer out from under the next append, as a concurrent
	// winner would. The compare-and-swap must reject and roll back.
	err = db.Model(&models.Branch{}).
		Where("repository_id = ? AND name = ?", repo.ID, "main").
		Update("last_commit_id", nil).Error
	require.NoError(t, err)

	_, err = cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "second"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	var count int64
	require.NoError(t, db.Model(&models.Commit{}).Where("repository_id = ?", repo.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "failed append must not leave a commit behind")
	_ = first
}

func TestListByRepositoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	const n = 5
	var last *models.Commit
	for i := 0; i < n; i++ {
		commit, err := cs.Append(author.ID, models.CreateCommitDTO{
			RepositoryID: repo.ID,
			Message:      fmt.Sprintf("commit %d", i),
		})
		require.NoError(t, err)
		last = commit
	}

	commits, total, err := cs.ListByRepository(repo.ID, "main", 1, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)
	require.Len(t, commits, n)

	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("commit %d", n-1-i), commits[i].Message)
	}

	var branch models.Branch
	require.NoError(t, db.Where("repository_id = ?", repo.ID).First(&branch).Error)
	require.NotNil(t, branch.LastCommitID)
	assert.Equal(t, last.ID, *branch.LastCommitID)
}

func TestListByRepositoryPagination(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	for i := 0; i < 7; i++ {
		_, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: fmt.Sprintf("c%d", i)})
		require.NoError(t, err)
	}

	page2, total, err := cs.ListByRepository(repo.ID, "main", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, page2, 3)
	assert.Equal(t, "c3", page2[0].Message)
}

func TestFindByShaRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, author, "project", false)

	created, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "fix the thing"})
	require.NoError(t, err)

	found, err := cs.FindBySha(created.SHA)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "fix the thing", found.Message)
	require.NotNil(t, found.Repository)
	assert.Equal(t, repo.ID, found.Repository.ID)
}

func TestFindByShaMissing(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())

	_, err := cs.FindBySha("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListByAuthorAcrossRepositories(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	author := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	repoA := createTestRepo(t, db, author, "alpha", false)
	repoB := createTestRepo(t, db, author, "beta", false)

	_, err := cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repoA.ID, Message: "one"})
	require.NoError(t, err)
	_, err = cs.Append(author.ID, models.CreateCommitDTO{RepositoryID: repoB.ID, Message: "two"})
	require.NoError(t, err)
	_, err = cs.Append(other.ID, models.CreateCommitDTO{RepositoryID: repoA.ID, Message: "not alice"})
	require.NoError(t, err)

	commits, total, err := cs.ListByAuthor("alice", 1, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, commits, 2)
	assert.Equal(t, "two", commits[0].Message)

	_, _, err = cs.ListByAuthor("nobody", 1, 30)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteCommitOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	owner := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "bob")
	repo := createTestRepo(t, db, owner, "project", false)

	commit, err := cs.Append(owner.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "first"})
	require.NoError(t, err)

	err = cs.Delete(commit.ID, stranger.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, cs.Delete(commit.ID, owner.ID))

	_, err = cs.FindBySha(commit.SHA)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteCommitLeavesChildParentDangling(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	owner := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, owner, "project", false)

	parent, err := cs.Append(owner.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "parent"})
	require.NoError(t, err)
	child, err := cs.Append(owner.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "child"})
	require.NoError(t, err)

	require.NoError(t, cs.Delete(parent.ID, owner.ID))

	// The child stays retrievable; its parent link simply resolves to
	// nothing now.
	found, err := cs.FindBySha(child.SHA)
	require.NoError(t, err)
	assert.Empty(t, found.Parents)
}

func TestDeleteParentCommitWithForeignKeysEnforced(t *testing.T) {
	db := setupStrictTestDB(t)
	cs := NewCommitService(db, testLogger())
	owner := createTestUser(t, db, "alice")
	repo := createTestRepo(t, db, owner, "project", false)

	parent, err := cs.Append(owner.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "parent"})
	require.NoError(t, err)
	child, err := cs.Append(owner.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "child"})
	require.NoError(t, err)

	// The child's commit_parents row still points at the deleted parent;
	// with enforcement on this must not block the delete.
	require.NoError(t, cs.Delete(parent.ID, owner.ID))

	found, err := cs.FindBySha(child.SHA)
	require.NoError(t, err)
	assert.Empty(t, found.Parents)
}

func TestStatsSumsStoredCounters(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCommitService(db, testLogger())
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := createTestRepo(t, db, alice, "project", false)

	_, err := cs.Append(alice.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "a1", Additions: 10, Deletions: 2})
	require.NoError(t, err)
	_, err = cs.Append(alice.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "a2", Additions: 5, Deletions: 1})
	require.NoError(t, err)
	_, err = cs.Append(bob.ID, models.CreateCommitDTO{RepositoryID: repo.ID, Message: "b1", Additions: 3, Deletions: 7})
	require.NoError(t, err)

	stats, err := cs.Stats(repo.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalCommits)
	assert.Equal(t, 18, stats.TotalAdditions)
	assert.Equal(t, 10, stats.TotalDeletions)
	assert.Equal(t, 2, stats.Contributors)

	require.Len(t, stats.TopContributors, 2)
	assert.Equal(t, "alice", stats.TopContributors[0].Username)
	assert.Equal(t, 2, stats.TopContributors[0].Commits)
	assert.Equal(t, 15, stats.TopContributors[0].Additions)

	var bucketed int
	for _, n := range stats.CommitsByDate {
		bucketed += n
	}
	assert.Equal(t, 3, bucketed)
}
