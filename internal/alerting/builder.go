package alerting

import (
	"fmt"
	"strings"

	"github.com/atlasops/atlasalerts/internal/catalog"
	"github.com/atlasops/atlasalerts/internal/logger"
	"github.com/atlasops/atlasalerts/internal/source"
	"github.com/atlasops/atlasalerts/internal/threshold"
)

// Builder assembles canonical alert configurations from definition rows.
type Builder struct {
	roles []string
	email string
}

// NewBuilder creates a Builder. roles are the GROUP notification roles;
// email, when non-empty, adds an EMAIL notification to every alert.
func NewBuilder(roles []string, email string) *Builder {
	return &Builder{roles: roles, email: email}
}

// Build produces zero, one, or two configurations for a row: one per
// non-empty threshold column. When both columns hold the same threshold
// after normalization, a single configuration tagged for both priorities
// is produced instead of two byte-identical remote alerts.
//
// Errors identify the offending row and column so the caller can skip the
// row and continue with the rest of the batch.
func (b *Builder) Build(row source.AlertRow) ([]AlertConfig, error) {
	entry, err := catalog.Lookup(row.Name)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row.Line, err)
	}

	low := normalizeCell(row.LowThreshold)
	high := normalizeCell(row.HighThreshold)

	var configs []AlertConfig
	if low != "" {
		priority := PriorityLow
		if high != "" && low == high {
			priority = PriorityBoth
		}
		cfg, err := b.buildOne(row, entry, row.LowThreshold, priority)
		if err != nil {
			return nil, fmt.Errorf("row %d, low priority column: %w", row.Line, err)
		}
		configs = append(configs, cfg)
	}
	if high != "" && low != high {
		cfg, err := b.buildOne(row, entry, row.HighThreshold, PriorityHigh)
		if err != nil {
			return nil, fmt.Errorf("row %d, high priority column: %w", row.Line, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (b *Builder) buildOne(row source.AlertRow, entry catalog.Entry, text string, priority Priority) (AlertConfig, error) {
	th, err := threshold.Parse(text)
	if err != nil {
		return AlertConfig{}, err
	}
	// A metric alert without a comparison would render as "metric > 0".
	if entry.Metric() && th.PureEvent {
		return AlertConfig{}, fmt.Errorf("alert %q tracks metric %s and needs a numeric comparison, got %q",
			row.Name, entry.MetricName, text)
	}
	return AlertConfig{
		SourceName:    row.Name,
		Priority:      priority,
		EventType:     entry.EventType,
		MetricName:    entry.MetricName,
		Units:         entry.Units,
		UsesThreshold: entry.UsesThreshold,
		Threshold:     th,
		Notification: Notification{
			DelayMin: th.DurationMinutes,
			Roles:    b.roles,
			Email:    b.email,
		},
	}, nil
}

// BuildAll builds configurations for a whole batch, skipping rows that
// fail to parse or have no catalog entry. Each skipped row is logged with
// its reason; the rest of the batch is unaffected.
func (b *Builder) BuildAll(rows []source.AlertRow, log logger.Logger) (configs []AlertConfig, skipped int) {
	for _, row := range rows {
		built, err := b.Build(row)
		if err != nil {
			skipped++
			log.Warn("skipping alert definition",
				logger.String("alert", row.Name),
				logger.Int("row", row.Line),
				logger.Error(err))
			continue
		}
		configs = append(configs, built...)
	}
	return configs, skipped
}

// normalizeCell canonicalizes a threshold cell for the skip and the
// low-equals-high comparisons. "none" is the table's explicit way of
// saying no alert of that priority.
func normalizeCell(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "none" {
		return ""
	}
	return s
}
