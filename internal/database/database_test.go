package database

import (
	"context"
	"testing"
	"time"

	"forumcore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(SQLiteDSN(":memory:")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", "file::memory:?_foreign_keys=on"},
		{"forum.db", "forum.db?_foreign_keys=on"},
		{"file:forum.db?cache=shared", "file:forum.db?cache=shared&_foreign_keys=on"},
		{"forum.db?_foreign_keys=off", "forum.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SQLiteDSN(tt.in), tt.in)
	}
}

func TestDialector_RejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)

	d, err := Dialector(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"sqlite always auto", config.Config{DBDriver: config.DriverSQLite, DBSchemaMode: SchemaModeSQL}, false, true, false},
		{"hybrid dev", config.Config{DBDriver: config.DriverPostgres, Env: "development"}, true, true, false},
		{"hybrid prod", config.Config{DBDriver: config.DriverPostgres, Env: "production", DBSchemaMode: SchemaModeHybrid}, true, false, false},
		{"sql only", config.Config{DBDriver: config.DriverPostgres, DBSchemaMode: SchemaModeSQL}, true, false, false},
		{"auto in prod refused", config.Config{DBDriver: config.DriverPostgres, Env: "production", DBSchemaMode: SchemaModeAuto}, false, false, true},
		{"unknown mode", config.Config{DBDriver: config.DriverPostgres, DBSchemaMode: "magic"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLiteCreatesEveryTable(t *testing.T) {
	db := openMemoryDB(t)
	cfg := &config.Config{DBDriver: config.DriverSQLite, Env: "test"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"user_profiles", "user_properties", "roles", "user_roles", "sections", "themes", "comments", "likes"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.Len(t, PersistentModels(), 8)
}

func TestGetMigrations_Embedded(t *testing.T) {
	migrations, err := GetMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "forum_core", first.Name)
	assert.Equal(t, "000001_forum_core", first.String())
	assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS likes")
	assert.Contains(t, first.DownScript, "DROP TABLE IF EXISTS likes")
}

func TestRunMigrations_AppliesOnceAndRollsBack(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()
	migrations := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	}

	require.NoError(t, RunMigrations(ctx, db, migrations))
	require.NoError(t, RunMigrations(ctx, db, migrations))

	applied, err := AppliedMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("gadgets"))

	require.NoError(t, RollbackMigration(ctx, db, migrations, 2))
	assert.False(t, db.Migrator().HasTable("gadgets"))

	applied, err = AppliedMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	assert.Error(t, RollbackMigration(ctx, db, migrations, 2))
	assert.Error(t, RollbackMigration(ctx, db, migrations, 9))
}

func TestRunMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "ghost"}).Error)

	err := RunMigrations(ctx, db, []Migration{{Version: 1, Name: "x", UpScript: "SELECT 1", DownScript: "SELECT 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestReaderOr_FallsBackToPrimary(t *testing.T) {
	db := openMemoryDB(t)
	assert.Same(t, db, ReaderOr(db))
}

func TestPing(t *testing.T) {
	db := openMemoryDB(t)
	assert.NoError(t, Ping(context.Background(), db, time.Second))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.Error(t, Ping(context.Background(), db, time.Second))
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:", Env: "test"}
	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.Same(t, db, ReaderOr(db))
}
