package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const csvFixture = `Alert Name,Alert Type/Category,Low Priority Threshold,High Priority Threshold,Key Insights
Oplog Window,Replication,< 24h for 5 minutes,< 1h for 5 minutes,Watch replication headroom
Host is Down,Availability,15 minutes,,Escalate quickly
,ignored,no name here,,
Swap Usage,System,> 2GB for 15 minutes,> 2GB for 15 minutes,
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile_CSV(t *testing.T) {
	rows, err := ReadFile(writeFixture(t, "alerts.csv", csvFixture))
	require.NoError(t, err)
	require.Len(t, rows, 3, "header and nameless rows are skipped")

	assert.Equal(t, AlertRow{
		Name:          "Oplog Window",
		Category:      "Replication",
		LowThreshold:  "< 24h for 5 minutes",
		HighThreshold: "< 1h for 5 minutes",
		Line:          2,
	}, rows[0])

	assert.Equal(t, "Host is Down", rows[1].Name)
	assert.Empty(t, rows[1].HighThreshold, "missing cell reads as empty")

	assert.Equal(t, "Swap Usage", rows[2].Name)
	assert.Equal(t, rows[2].LowThreshold, rows[2].HighThreshold)
}

func TestReadFile_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{"Alert Name", "Alert Type/Category", "Low Priority Threshold", "High Priority Threshold", "Key Insights"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []any{"Page Faults", "System", "> 10 for 5 minutes", "> 50 for 5 minutes", "Paging pressure"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	blank := []any{"", "row without a name"}
	require.NoError(t, f.SetSheetRow(sheet, "A3", &blank))
	require.NoError(t, f.SaveAs(path))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AlertRow{
		Name:          "Page Faults",
		Category:      "System",
		LowThreshold:  "> 10 for 5 minutes",
		HighThreshold: "> 50 for 5 minutes",
		Line:          2,
	}, rows[0])
}

func TestReadFile_UnsupportedFormat(t *testing.T) {
	_, err := ReadFile(writeFixture(t, "alerts.txt", "whatever"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
