package alerting

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atlasops/atlasalerts/internal/catalog"
	"github.com/atlasops/atlasalerts/internal/threshold"
)

// AlertConfig is the canonical alert definition produced from one row and
// one priority column. It carries everything needed to render the Atlas
// wire document.
type AlertConfig struct {
	SourceName string
	Priority   Priority
	EventType  string
	MetricName string
	// Units is the catalog's unit hint for the metric; the parsed
	// threshold's unit wins when it is more specific than RAW.
	Units         threshold.Unit
	UsesThreshold bool
	Threshold     threshold.Threshold
	Notification  Notification
}

// Notification is the fixed-shape notification policy attached to every
// alert: re-notify every 60 minutes, delay by the threshold's sustained
// duration, email the configured group roles.
type Notification struct {
	DelayMin int
	Roles    []string
	// Email, when set, adds a second EMAIL notification alongside GROUP.
	Email string
}

// Key is the identity under which two configurations count as the same
// remote alert, regardless of which rows produced them.
type Key struct {
	EventType       string
	MetricName      string
	Operator        threshold.Operator
	Value           float64
	Unit            threshold.Unit
	DurationMinutes int
}

// Key returns the deduplication identity of the configuration.
func (c *AlertConfig) Key() Key {
	k := Key{
		EventType:       c.EventType,
		MetricName:      c.MetricName,
		DurationMinutes: c.Threshold.DurationMinutes,
	}
	if !c.Threshold.PureEvent {
		k.Operator = c.Threshold.Operator
		k.Value = c.Threshold.Value
		k.Unit = c.Threshold.Unit
	}
	return k
}

// DisplayName renders the configuration's name with its priority, the way
// it appears in logs and summaries.
func (c *AlertConfig) DisplayName() string {
	switch c.Priority {
	case PriorityHigh:
		return c.SourceName + " (High Priority)"
	case PriorityBoth:
		return c.SourceName + " (Low+High Priority)"
	default:
		return c.SourceName + " (Low Priority)"
	}
}

// FileName returns the numbered artifact file name for the configuration.
func (c *AlertConfig) FileName(index int) string {
	slug := strings.ToLower(c.SourceName)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, ":", "")
	slug = strings.ReplaceAll(slug, "/", "_")
	return fmt.Sprintf("%02d_%s_%s.json", index, slug, c.Priority)
}

// WireConfig is the exact JSON document the Atlas CLI accepts.
type WireConfig struct {
	EventTypeName   string               `json:"eventTypeName"`
	Enabled         bool                 `json:"enabled"`
	Matchers        []any                `json:"matchers"`
	MetricThreshold *WireMetricThreshold `json:"metricThreshold,omitempty"`
	Threshold       *WireThreshold       `json:"threshold,omitempty"`
	Notifications   []WireNotification   `json:"notifications"`
}

// WireMetricThreshold is the threshold block for metric-based alerts.
type WireMetricThreshold struct {
	MetricName string  `json:"metricName"`
	Operator   string  `json:"operator"`
	Threshold  float64 `json:"threshold"`
	Units      string  `json:"units"`
	Mode       string  `json:"mode"`
}

// WireThreshold is the threshold block for event-based alerts that carry
// a numeric threshold.
type WireThreshold struct {
	Operator  string `json:"operator"`
	Threshold int    `json:"threshold"`
	Units     string `json:"units"`
}

// WireNotification is one entry of the notifications array.
type WireNotification struct {
	TypeName     string   `json:"typeName"`
	IntervalMin  int      `json:"intervalMin"`
	DelayMin     int      `json:"delayMin"`
	EmailEnabled bool     `json:"emailEnabled,omitempty"`
	EmailAddress string   `json:"emailAddress,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// Wire renders the configuration into the document shape Atlas expects.
func (c *AlertConfig) Wire() WireConfig {
	w := WireConfig{
		EventTypeName: c.EventType,
		Enabled:       true,
		Matchers:      []any{},
		Notifications: c.notifications(),
	}

	switch {
	case c.MetricName != "":
		w.MetricThreshold = c.metricThreshold()
	case c.UsesThreshold && !c.Threshold.PureEvent:
		w.Threshold = c.eventThreshold()
	}

	// Downtime-style events express their threshold as how long the
	// condition persisted, which the parser reports as a duration.
	if c.EventType == catalog.EventHostDown || c.EventType == catalog.EventNoPrimary {
		if c.UsesThreshold {
			w.Threshold = &WireThreshold{
				Operator:  string(threshold.OperatorGreaterThan),
				Threshold: c.Threshold.DurationMinutes,
				Units:     string(threshold.UnitMinutes),
			}
		}
	}

	return w
}

func (c *AlertConfig) metricThreshold() *WireMetricThreshold {
	units := c.Units
	if units == "" {
		units = threshold.UnitRaw
	}
	// The parsed unit is authoritative when the cell spelled one out.
	if c.Threshold.Unit != "" && c.Threshold.Unit != threshold.UnitRaw {
		units = c.Threshold.Unit
	}
	operator := c.Threshold.Operator
	if operator == "" {
		operator = threshold.OperatorGreaterThan
	}
	return &WireMetricThreshold{
		MetricName: c.MetricName,
		Operator:   string(operator),
		Threshold:  c.Threshold.Value,
		Units:      string(units),
		Mode:       "AVERAGE",
	}
}

func (c *AlertConfig) eventThreshold() *WireThreshold {
	switch c.EventType {
	case catalog.EventOplogWindowRunningOut:
		// The oplog window threshold is expressed in hours on the wire.
		hours := int(thresholdHours(c.Threshold))
		if hours < 1 {
			hours = 1
		}
		operator := c.Threshold.Operator
		if operator == "" {
			operator = threshold.OperatorLessThan
		}
		return &WireThreshold{
			Operator:  string(operator),
			Threshold: hours,
			Units:     string(threshold.UnitHours),
		}
	case catalog.EventSnapshotBehind:
		return &WireThreshold{
			Operator:  string(threshold.OperatorGreaterThan),
			Threshold: int(thresholdHours(c.Threshold)),
			Units:     string(threshold.UnitHours),
		}
	case catalog.EventTooManyElections:
		operator := c.Threshold.Operator
		if operator == "" {
			operator = threshold.OperatorGreaterThan
		}
		return &WireThreshold{
			Operator:  string(operator),
			Threshold: int(c.Threshold.Value),
			Units:     string(threshold.UnitRaw),
		}
	default:
		return nil
	}
}

// thresholdHours converts a parsed time threshold to hours. Unitless
// values are already hours in the source table.
func thresholdHours(t threshold.Threshold) float64 {
	switch t.Unit {
	case threshold.UnitSeconds:
		return t.Value / 3600
	case threshold.UnitMinutes:
		return t.Value / 60
	default:
		return t.Value
	}
}

func (c *AlertConfig) notifications() []WireNotification {
	roles := c.Notification.Roles
	if len(roles) == 0 {
		roles = []string{DefaultNotificationRole}
	}
	notifications := []WireNotification{{
		TypeName:     notificationTypeGroup,
		IntervalMin:  NotificationIntervalMin,
		DelayMin:     c.Notification.DelayMin,
		EmailEnabled: true,
		Roles:        roles,
	}}
	if c.Notification.Email != "" {
		notifications = append(notifications, WireNotification{
			TypeName:     notificationTypeEmail,
			IntervalMin:  NotificationIntervalMin,
			DelayMin:     c.Notification.DelayMin,
			EmailAddress: c.Notification.Email,
		})
	}
	return notifications
}

// MarshalWire renders the wire document as indented JSON, the form written
// to artifact files and fed to the CLI.
func (c *AlertConfig) MarshalWire() ([]byte, error) {
	raw, err := json.MarshalIndent(c.Wire(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert config %q: %w", c.DisplayName(), err)
	}
	return raw, nil
}
