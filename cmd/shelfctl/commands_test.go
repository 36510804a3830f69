package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hypeshelf/internal/model"
	sqliteRepo "github.com/sakif/hypeshelf/internal/repository/sqlite"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	if dbPath != "" {
		args = append([]string{"--db", dbPath}, args...)
	}
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShelfctl(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shelf.db")

	out, err := run(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, out)

	out, err = run(t, dbPath, "seed-movies")
	require.NoError(t, err)
	assert.JSONEq(t, `{"skipped":false,"count":12}`, out)

	out, err = run(t, dbPath, "seed-movies")
	require.NoError(t, err)
	assert.JSONEq(t, `{"skipped":true,"count":0}`, out)

	out, err = run(t, dbPath, "grant-admin", "github_42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, out)

	out, err = run(t, dbPath, "backfill-staff-picks")
	require.NoError(t, err)
	assert.JSONEq(t, `{"updated":0}`, out)

	db, err := sqliteRepo.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	row, err := db.GetRole(context.Background(), "github_42")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, row.Role)
}

func TestShelfctl_GrantAdminNeedsUser(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "shelf.db"), "grant-admin")
	assert.Error(t, err)
}

func TestShelfctl_CreatesMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "hypeshelf.db")

	out, err := run(t, dbPath, "seed-movies")
	require.NoError(t, err)
	assert.JSONEq(t, `{"skipped":false,"count":12}`, out)
}

func TestShelfctl_DBPathFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-env-file.db")
	envFile := filepath.Join(dir, "shelf.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_PATH="+dbPath+"\n"), 0o600))

	for _, k := range []string{"DB_PATH", "PORT", "JWT_SECRET", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("ENV_FILE", envFile)

	_, err := run(t, "", "grant-admin", "github_7")
	require.NoError(t, err)

	db, err := sqliteRepo.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	row, err := db.GetRole(context.Background(), "github_7")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, row.Role)
}
