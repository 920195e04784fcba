package repository

import (
	"testing"
	"time"

	"forumcore/internal/database"
	"forumcore/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database with foreign keys enforced.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(database.SQLiteDSN(":memory:")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func (f fixture) user(name string) *models.UserProfile {
	u := &models.UserProfile{RegistrationDate: baseTime}
	if name != "" {
		u.UserName = &name
	}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f fixture) section(title string) *models.Section {
	s := &models.Section{Title: title}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f fixture) topic(sectionID, userID uint, title string, minute int) *models.Theme {
	th := &models.Theme{
		Title:     title,
		SectionID: sectionID,
		UserID:    userID,
		CreatedAt: baseTime.Add(time.Duration(minute) * time.Minute),
	}
	require.NoError(f.t, f.db.Create(th).Error)
	return th
}

func (f fixture) comment(topicID, userID uint, admitted bool, minute int) *models.Comment {
	c := &models.Comment{
		Text:       "comment",
		ThemeID:    topicID,
		UserID:     userID,
		IsAdmitted: admitted,
		CreatedAt:  baseTime.Add(time.Duration(minute) * time.Minute),
	}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f fixture) like(commentID, userID uint, vote int) *models.Like {
	l := &models.Like{CommentID: commentID, UserID: userID, Vote: vote}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}
