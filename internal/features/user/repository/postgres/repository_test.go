package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agora-backend/internal/features/user/models"
	"agora-backend/internal/features/user/repository"
	platformpg "agora-backend/internal/platform/postgres"
)

type RepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.UserRepository
}

func TestRepositorySuite(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, platformpg.Migrate(db))

	suite.Run(t, &RepositorySuite{db: db, repo: NewPostgresRepository(db)})
	db.Close()
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.db.Exec("TRUNCATE users")
	s.Require().NoError(err)
}

func newUser() *models.User {
	return &models.User{
		ID:           123456789,
		Username:     "testuser",
		FirstName:    "Test",
		LastName:     "User",
		LanguageCode: "en",
		Role:         "user",
		Status:       "active",
	}
}

func (s *RepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	user := newUser()
	s.Require().NoError(s.repo.Create(ctx, user))
	s.False(user.CreatedAt.IsZero())

	got, err := s.repo.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Username, got.Username)
	s.Equal("en", got.LanguageCode)
	s.Equal("active", got.Status)
}

func (s *RepositorySuite) TestCreateKeepsRoleOnConflict() {
	ctx := context.Background()
	_, err := s.db.Exec(`INSERT INTO users (id, username, role) VALUES ($1, 'oldname', 'admin')`, int64(123456789))
	s.Require().NoError(err)

	user := newUser()
	s.Require().NoError(s.repo.Create(ctx, user))
	s.Equal("admin", user.Role)

	got, err := s.repo.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("testuser", got.Username)
}

func (s *RepositorySuite) TestGetMissing() {
	_, err := s.repo.GetByID(context.Background(), 42)
	s.ErrorIs(err, repository.ErrUserNotFound)
}

func (s *RepositorySuite) TestGetStatus() {
	ctx := context.Background()
	user := newUser()
	s.Require().NoError(s.repo.Create(ctx, user))

	_, err := s.db.Exec(`UPDATE users SET status = 'banned' WHERE id = $1`, user.ID)
	s.Require().NoError(err)

	status, err := s.repo.GetStatus(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("banned", status)

	_, err = s.repo.GetStatus(ctx, 42)
	s.ErrorIs(err, repository.ErrUserNotFound)
}

func (s *RepositorySuite) TestUpdate() {
	ctx := context.Background()
	user := newUser()
	s.Require().NoError(s.repo.Create(ctx, user))

	user.FirstName = "Renamed"
	s.Require().NoError(s.repo.Update(ctx, user))

	got, err := s.repo.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.FirstName)

	missing := newUser()
	missing.ID = 1
	assert.ErrorIs(s.T(), s.repo.Update(ctx, missing), repository.ErrUserNotFound)
}
