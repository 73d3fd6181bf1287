package alerting

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasops/atlasalerts/internal/catalog"
	"github.com/atlasops/atlasalerts/internal/logger"
	"github.com/atlasops/atlasalerts/internal/source"
	"github.com/atlasops/atlasalerts/internal/threshold"
)

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

func testBuilder() *Builder {
	return NewBuilder([]string{"GROUP_OWNER"}, "")
}

func TestBuild_TwoPriorities(t *testing.T) {
	row := source.AlertRow{
		Name:          "Page Faults",
		LowThreshold:  "> 10 for 5 minutes",
		HighThreshold: "> 50 for 5 minutes",
		Line:          2,
	}

	configs, err := testBuilder().Build(row)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, PriorityLow, configs[0].Priority)
	assert.Equal(t, PriorityHigh, configs[1].Priority)
	assert.Equal(t, "EXTRA_INFO_PAGE_FAULTS", configs[0].MetricName)
	assert.InDelta(t, 10.0, configs[0].Threshold.Value, 0)
	assert.InDelta(t, 50.0, configs[1].Threshold.Value, 0)
	assert.Equal(t, 5, configs[0].Notification.DelayMin)
}

// Identical thresholds in both columns collapse to one configuration so
// Atlas never receives two byte-identical alerts.
func TestBuild_IdenticalThresholdsCollapse(t *testing.T) {
	row := source.AlertRow{
		Name:          "Swap Usage",
		LowThreshold:  "> 2GB for 15 minutes",
		HighThreshold: "> 2gb for 15 minutes", // same after normalization
		Line:          3,
	}

	configs, err := testBuilder().Build(row)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, PriorityBoth, configs[0].Priority)
}

func TestBuild_EmptyColumnsSkipped(t *testing.T) {
	tests := []struct {
		name         string
		low, high    string
		wantCount    int
		wantPriority Priority
	}{
		{"both empty", "", "", 0, ""},
		{"low only", "> 90%", "", 1, PriorityLow},
		{"high only", "", "> 95%", 1, PriorityHigh},
		{"none keyword means no alert", "none", "> 95%", 1, PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := source.AlertRow{
				Name:          "System: CPU (User) %",
				LowThreshold:  tt.low,
				HighThreshold: tt.high,
				Line:          4,
			}
			configs, err := testBuilder().Build(row)
			require.NoError(t, err)
			require.Len(t, configs, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantPriority, configs[0].Priority)
			}
		})
	}
}

func TestBuild_UnknownAlertName(t *testing.T) {
	row := source.AlertRow{Name: "Bogus Alert", LowThreshold: "> 1", Line: 7}

	_, err := testBuilder().Build(row)
	require.Error(t, err)

	var unknownErr *catalog.UnknownAlertError
	assert.True(t, errors.As(err, &unknownErr))
	assert.Contains(t, err.Error(), "row 7")
}

func TestBuild_MalformedThresholdNamesColumn(t *testing.T) {
	row := source.AlertRow{
		Name:          "Page Faults",
		LowThreshold:  "> 10 for 5 minutes",
		HighThreshold: "gibberish",
		Line:          9,
	}

	_, err := testBuilder().Build(row)
	require.Error(t, err)

	var formatErr *threshold.FormatError
	assert.True(t, errors.As(err, &formatErr))
	assert.Contains(t, err.Error(), "high priority column")
	assert.Contains(t, err.Error(), "row 9")
}

func TestBuild_EventAlertCarriesCatalogFlags(t *testing.T) {
	row := source.AlertRow{Name: "Host is Down", LowThreshold: "15 minutes", Line: 5}

	configs, err := testBuilder().Build(row)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	cfg := configs[0]
	assert.Equal(t, catalog.EventHostDown, cfg.EventType)
	assert.Empty(t, cfg.MetricName)
	assert.True(t, cfg.UsesThreshold)
	assert.True(t, cfg.Threshold.PureEvent)
	assert.Equal(t, 15, cfg.Notification.DelayMin)
}

// "any occurrence" makes no sense for a metric-backed alert; rendering it
// would produce a meaningless "metric > 0" threshold.
func TestBuild_MetricAlertRejectsPureEvent(t *testing.T) {
	row := source.AlertRow{
		Name:         "Page Faults",
		LowThreshold: "any occurrence",
		Line:         6,
	}

	_, err := testBuilder().Build(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a numeric comparison")
	assert.Contains(t, err.Error(), "low priority column")
}

// One bad row never aborts the batch: the rest still build.
func TestBuildAll_SkipsAndContinues(t *testing.T) {
	rows := []source.AlertRow{
		{Name: "Page Faults", LowThreshold: "> 10 for 5 minutes", Line: 2},
		{Name: "Bogus Alert", LowThreshold: "> 1", Line: 3},
		{Name: "Swap Usage", LowThreshold: "not a threshold", Line: 4},
		{Name: "Host is Down", LowThreshold: "15 minutes", Line: 5},
	}

	configs, skipped := testBuilder().BuildAll(rows, testLogger())
	assert.Equal(t, 2, skipped)
	require.Len(t, configs, 2)
	assert.Equal(t, "Page Faults", configs[0].SourceName)
	assert.Equal(t, "Host is Down", configs[1].SourceName)
}
