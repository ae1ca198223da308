package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearJanitorEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "AUTHENTICATE_WITH_ORG_ID",
		"IDENTITY_BASE_URL", "IDENTITY_TOKEN", "IDENTITY_TIMEOUT",
		"RECONCILE_SCHEDULE", "EXPIRY_SCHEDULE", "FLEET_CONCURRENCY",
		"RECONCILE_ON_START", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

// runCommand executes the root command with the given args in a temp
// working directory so no ambient .env file leaks in.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommand_CreatesDatabase(t *testing.T) {
	clearJanitorEnv(t)
	dbPath := filepath.Join(t.TempDir(), "janitor.sqlite")
	t.Setenv("DB_PATH", dbPath)

	_, err := runCommand(t, "migrate")
	require.NoError(t, err)

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestProvisionCommand_RequiresFlags(t *testing.T) {
	clearJanitorEnv(t)
	_, err := runCommand(t, "provision")
	assert.Error(t, err)
}

func TestReconcileCommand_RequiresIdentityConfig(t *testing.T) {
	clearJanitorEnv(t)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "janitor.sqlite"))

	_, err := runCommand(t, "reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_BASE_URL")
}

func TestSweepCommand_EmptyStore(t *testing.T) {
	clearJanitorEnv(t)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "janitor.sqlite"))

	_, err := runCommand(t, "sweep")
	assert.NoError(t, err)
}

func TestApplyFileConfig(t *testing.T) {
	clearJanitorEnv(t)
	cfgFile := filepath.Join(t.TempDir(), "janitor.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(
		"db_path: /tmp/from-file.sqlite\nfleet_concurrency: 7\nreconcile_on_start: true\n"), 0644))

	require.NoError(t, applyFileConfig(cfgFile))

	assert.Equal(t, "/tmp/from-file.sqlite", os.Getenv("DB_PATH"))
	assert.Equal(t, "7", os.Getenv("FLEET_CONCURRENCY"))
	assert.Equal(t, "true", os.Getenv("RECONCILE_ON_START"))
}

func TestApplyFileConfig_EnvWins(t *testing.T) {
	clearJanitorEnv(t)
	t.Setenv("DB_PATH", "/tmp/from-env.sqlite")

	cfgFile := filepath.Join(t.TempDir(), "janitor.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("db_path: /tmp/from-file.sqlite\n"), 0644))

	require.NoError(t, applyFileConfig(cfgFile))
	assert.Equal(t, "/tmp/from-env.sqlite", os.Getenv("DB_PATH"))
}

func TestApplyFileConfig_Malformed(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "janitor.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("{not yaml"), 0644))
	assert.Error(t, applyFileConfig(cfgFile))
}

func TestApplyFileConfig_MissingFile(t *testing.T) {
	assert.Error(t, applyFileConfig("/nonexistent/janitor.yaml"))
}
