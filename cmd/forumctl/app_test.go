package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"forumcore/internal/config"
	"forumcore/internal/database"
	"forumcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	db, err := database.Open(sqlite.Open(database.SQLiteDSN(":memory:")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite, RecentTopicsLimit: 10}
	out := &bytes.Buffer{}
	a := newApp(db, cfg, out)
	require.NoError(t, a.run(context.Background(), []string{"migrate"}))
	out.Reset()
	return a, out
}

const cliFixture = `
users:
  - name: alice
    email: alice@example.com
    roles: [moderator]
  - name: bob
sections:
  - title: General
    topics:
      - title: Welcome
        author: alice
        comments:
          - author: bob
            text: first
            votes:
              - voter: alice
                vote: 2
`

func TestApp_FixtureWorkflow(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fixture.yml")
	require.NoError(t, os.WriteFile(path, []byte(cliFixture), 0o600))

	require.NoError(t, a.run(ctx, []string{"load", path}))
	assert.Contains(t, out.String(), "Created 2 users, 1 sections, 1 topics, 1 comments (0 admitted), 1 votes")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"sections"}))
	assert.Regexp(t, `1\s+General\s+1\s+0\s+1`, out.String())

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"pending"}))
	assert.Contains(t, out.String(), "Welcome")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"comments", "1"}))
	assert.NotContains(t, out.String(), "first")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"comments", "1", "2"}))
	assert.Contains(t, out.String(), "first")

	require.NoError(t, a.run(ctx, []string{"admit", "1"}))
	err := a.run(ctx, []string{"admit", "1"})
	assert.Error(t, err)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"profile", "2"}))
	assert.Regexp(t, `rating\s+2`, out.String())
	assert.Contains(t, out.String(), "hidden by user")

	var properties int64
	require.NoError(t, a.db.Model(&models.UserProperty{}).Where("user_id = ?", 2).Count(&properties).Error)
	assert.Zero(t, properties)
	out.Reset()
	require.NoError(t, a.run(ctx, []string{"profile", "2", "own"}))
	assert.Regexp(t, `rating\s+2`, out.String())
	require.NoError(t, a.db.Model(&models.UserProperty{}).Where("user_id = ?", 2).Count(&properties).Error)
	assert.Equal(t, int64(1), properties)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"anonymize", "2"}))
	require.NoError(t, a.run(ctx, []string{"comments", "1", "all"}))
	assert.Contains(t, out.String(), "deleted user")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"delete-section", "1"}))
	assert.Contains(t, out.String(), "Deleted 1 sections, 1 topics, 1 comments, 1 likes")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"delete-topic", "1"}))
	assert.Contains(t, out.String(), "Nothing to delete")
}

func TestApp_Seed(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"seed", "3"}))
	assert.Contains(t, out.String(), "Created 3 users, 4 sections, 20 topics")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"recent", "5"}))
	// header plus five rows
	assert.Len(t, bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n")), 6)
}

func TestApp_ArgumentErrors(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	for _, args := range [][]string{
		{},
		{"nope"},
		{"admit"},
		{"admit", "abc"},
		{"topics", "0"},
		{"recent", "x"},
		{"load"},
		{"seed", "-1"},
		{"profile", "1", "public"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "down", "zero"},
	} {
		err := a.run(ctx, args)
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}
}

func TestApp_MigrateDown(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	err := a.run(ctx, []string{"migrate", "down", "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")

	require.NoError(t, a.db.AutoMigrate(&database.MigrationLog{}))
	require.NoError(t, a.db.Create(&database.MigrationLog{Version: 1, Name: "forum_core"}).Error)
	require.NoError(t, a.run(ctx, []string{"migrate", "down", "1"}))
	assert.Contains(t, out.String(), "Migration 000001 rolled back")

	applied, err := database.AppliedMigrations(ctx, a.db)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, a.db.Migrator().HasTable("themes"))
}
