package alerting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "alerts")
	configs := testConfigs(t, "> 10 for 5 minutes", "> 2gb for 15 minutes")

	paths, err := WriteArtifacts(dir, configs, testLogger())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "01_page_faults_low.json", filepath.Base(paths[0]))
	assert.Equal(t, "02_swap_usage_low.json", filepath.Base(paths[1]))

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "OUTSIDE_METRIC_THRESHOLD", doc["eventTypeName"])
}

func TestWriteArtifacts_ClearsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "99_old_alert_low.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	keep := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	_, err := WriteArtifacts(dir, testConfigs(t, "> 10 for 5 minutes"), testLogger())
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, keep)

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
