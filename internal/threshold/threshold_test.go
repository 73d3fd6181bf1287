package threshold

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Comparisons(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Threshold
	}{
		{
			"raw with duration",
			"> 4000 for 2 minutes",
			Threshold{Operator: OperatorGreaterThan, Value: 4000, Unit: UnitRaw, DurationMinutes: 2},
		},
		{
			"hours normalized to seconds",
			"< 24h for 5 minutes",
			Threshold{Operator: OperatorLessThan, Value: 86400, Unit: UnitSeconds, DurationMinutes: 5},
		},
		{
			"milliseconds",
			"> 50ms for 5 minutes",
			Threshold{Operator: OperatorGreaterThan, Value: 50, Unit: UnitMilliseconds, DurationMinutes: 5},
		},
		{
			"gigabytes normalized to bytes",
			"> 2GB for 15 minutes",
			Threshold{Operator: OperatorGreaterThan, Value: 2147483648, Unit: UnitBytes, DurationMinutes: 15},
		},
		{
			"megabytes normalized to bytes",
			"> 500MB",
			Threshold{Operator: OperatorGreaterThan, Value: 524288000, Unit: UnitBytes},
		},
		{
			"percent stays raw without duration",
			"> 90%",
			Threshold{Operator: OperatorGreaterThan, Value: 90, Unit: UnitRaw},
		},
		{
			"rate stays raw",
			"> 100/second for 5 minutes",
			Threshold{Operator: OperatorGreaterThan, Value: 100, Unit: UnitRaw, DurationMinutes: 5},
		},
		{
			"range takes the lower bound",
			"> 0-10",
			Threshold{Operator: OperatorGreaterThan, Value: 0, Unit: UnitRaw},
		},
		{
			"open-ended bound",
			"> 10+",
			Threshold{Operator: OperatorGreaterThan, Value: 10, Unit: UnitRaw},
		},
		{
			"seconds",
			"< 30s for 10 minutes",
			Threshold{Operator: OperatorLessThan, Value: 30, Unit: UnitSeconds, DurationMinutes: 10},
		},
		{
			"duration in hours",
			"> 3 for 1 hour",
			Threshold{Operator: OperatorGreaterThan, Value: 3, Unit: UnitRaw, DurationMinutes: 60},
		},
		{
			"no whitespace",
			">90% for 5 minutes",
			Threshold{Operator: OperatorGreaterThan, Value: 90, Unit: UnitRaw, DurationMinutes: 5},
		},
		{
			"fractional value",
			"> 2.5GB",
			Threshold{Operator: OperatorGreaterThan, Value: 2684354560, Unit: UnitBytes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.PureEvent)
		})
	}
}

func TestParse_PureEvents(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantMinutes int
	}{
		{"any occurrence", "Any occurrence", 0},
		{"any occurrence lowercase", "any occurrence", 0},
		{"none keyword", "None", 0},
		{"bare minutes", "15 minutes", 15},
		{"bare minute singular", "1 minute", 1},
		{"bare hours", "24 hours", 1440},
		{"short form", "5m", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.True(t, got.PureEvent, "expected a pure event")
			assert.Equal(t, tt.wantMinutes, got.DurationMinutes)
			assert.Empty(t, got.Operator, "pure events carry no operator")
			assert.Zero(t, got.Value, "pure events carry no value")
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"no comparator", "4000 widgets"},
		{"operator without value", ">"},
		{"operator then garbage", "> soon"},
		{"unknown unit", "> 5 bananas"},
		{"bad duration", "> 5 for soon"},
		{"words only", "alert me please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			var formatErr *FormatError
			assert.True(t, errors.As(err, &formatErr), "want *FormatError, got %T", err)
		})
	}
}

// Canonical renderings must parse back to the same threshold, so logs and
// artifacts can quote a threshold without losing information.
func TestParse_RoundTripStability(t *testing.T) {
	texts := []string{
		"> 4000 for 2 minutes",
		"< 24h for 5 minutes",
		"> 50ms for 5 minutes",
		"> 2GB for 15 minutes",
		"> 90%",
		"> 0-10",
		"> 10+",
		"any occurrence",
		"15 minutes",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			first, err := Parse(text)
			require.NoError(t, err)
			second, err := Parse(first.String())
			require.NoError(t, err, "canonical form %q must parse", first.String())
			assert.Equal(t, first, second)
		})
	}
}

func TestThreshold_String(t *testing.T) {
	tests := []struct {
		name string
		th   Threshold
		want string
	}{
		{
			"comparison with duration",
			Threshold{Operator: OperatorGreaterThan, Value: 4000, Unit: UnitRaw, DurationMinutes: 2},
			"> 4000 for 2 minutes",
		},
		{
			"comparison without duration",
			Threshold{Operator: OperatorLessThan, Value: 30, Unit: UnitSeconds},
			"< 30s",
		},
		{
			"pure event",
			Threshold{PureEvent: true, Unit: UnitRaw},
			"any occurrence",
		},
		{
			"delayed pure event",
			Threshold{PureEvent: true, Unit: UnitRaw, DurationMinutes: 15},
			"15 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.th.String())
		})
	}
}
