package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	settings, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, settings.ProjectID)
	assert.Equal(t, "atlas_alert_configurations.xlsx", settings.InputFile)
	assert.Equal(t, "./alerts", settings.OutputDir)
	assert.Equal(t, "./logs", settings.LogDir)
	assert.Equal(t, ".automation_alert_ids.json", settings.TrackingFile)
	assert.Equal(t, []string{"GROUP_OWNER"}, settings.NotificationRoles)
	assert.Equal(t, "atlas", settings.AtlasBinary)
	assert.Equal(t, 60*time.Second, settings.CommandTimeout.Std())
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
project_id: 5f1a2b3c4d5e6f7a8b9c0d1e
input_file: definitions.csv
notification_roles:
  - GROUP_OWNER
  - GROUP_DATA_ACCESS_ADMIN
notification_email: oncall@example.com
command_timeout: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5f1a2b3c4d5e6f7a8b9c0d1e", settings.ProjectID)
	assert.Equal(t, "definitions.csv", settings.InputFile)
	assert.Equal(t, []string{"GROUP_OWNER", "GROUP_DATA_ACCESS_ADMIN"}, settings.NotificationRoles)
	assert.Equal(t, "oncall@example.com", settings.NotificationEmail)
	assert.Equal(t, 2*time.Minute, settings.CommandTimeout.Std())
	// Unset keys keep their defaults.
	assert.Equal(t, "./alerts", settings.OutputDir)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read settings file")
}

// A default-named settings file in the working directory is picked up
// without being asked for.
func TestLoad_DefaultFileDiscovered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "atlasalerts.yaml"),
		[]byte("project_id: discovered\n"), 0o644))
	chdir(t, dir)

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "discovered", settings.ProjectID)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ATLASALERTS_PROJECT_ID", "from-env")
	t.Setenv("ATLASALERTS_COMMAND_TIMEOUT", "30s")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.ProjectID)
	assert.Equal(t, 30*time.Second, settings.CommandTimeout.Std())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_id: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NonPositiveTimeoutFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("command_timeout: 0s\n"), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, settings.CommandTimeout.Std())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
