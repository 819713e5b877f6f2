package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/mwhitfield/labserver/internal/adapter/driven/sqlite"
	"github.com/mwhitfield/labserver/internal/auth"
)

func setupCLIEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "user_data.db")
	t.Setenv("LABSERVER_DB_PATH", dbPath)
	t.Setenv("LABSERVER_LEGACY_CONFIG", filepath.Join(dir, "config.js"))
	return dbPath
}

func TestRun_AddAndList(t *testing.T) {
	dbPath := setupCLIEnv(t)

	require.NoError(t, run([]string{"add", "a@b.com", "secret"}))
	require.NoError(t, run([]string{"list"}))

	db, err := sqliteadapter.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user, err := sqliteadapter.NewUserRepo(db).GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, auth.Verify("secret", user.PasswordHash, user.Salt))
}

// Adding the same email twice keeps one row with the newest password.
func TestRun_AddTwiceLastWriteWins(t *testing.T) {
	dbPath := setupCLIEnv(t)

	require.NoError(t, run([]string{"add", "a@b.com", "first"}))
	require.NoError(t, run([]string{"add", "a@b.com", "second"}))

	db, err := sqliteadapter.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqliteadapter.NewUserRepo(db)

	emails, err := repo.ListEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com"}, emails)

	user, err := repo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, auth.Verify("second", user.PasswordHash, user.Salt))
	assert.False(t, auth.Verify("first", user.PasswordHash, user.Salt))
}

func TestRun_UnknownCommand(t *testing.T) {
	setupCLIEnv(t)

	assert.Error(t, run([]string{"frobnicate"}))
}

func TestRun_AddMissingArgs(t *testing.T) {
	setupCLIEnv(t)

	assert.Error(t, run([]string{"add", "a@b.com"}))
}
