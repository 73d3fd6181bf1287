// Package catalog maps human-readable alert names from the definition table
// to their Atlas event type and metric descriptors.
package catalog

import (
	"fmt"
	"sort"

	"github.com/atlasops/atlasalerts/internal/threshold"
)

// Atlas event types referenced by catalog entries. Metric-based alerts all
// share OUTSIDE_METRIC_THRESHOLD; the rest are event-based.
const (
	EventOutsideMetricThreshold = "OUTSIDE_METRIC_THRESHOLD"
	EventOplogWindowRunningOut  = "REPLICATION_OPLOG_WINDOW_RUNNING_OUT"
	EventTooManyElections       = "TOO_MANY_ELECTIONS"
	EventHostDown               = "HOST_DOWN"
	EventNoPrimary              = "NO_PRIMARY"
	EventPrimaryElected         = "PRIMARY_ELECTED"
	EventSnapshotFailed         = "CPS_SNAPSHOT_FAILED"
	EventRestoreSuccessful      = "CPS_RESTORE_SUCCESSFUL"
	EventSnapshotFallbackFailed = "CPS_SNAPSHOT_FALLBACK_FAILED"
	EventSnapshotBehind         = "CPS_SNAPSHOT_BEHIND"
)

// Entry describes how one named alert maps onto Atlas. MetricName is empty
// for event-based alerts; UsesThreshold marks event-based alerts that still
// carry a numeric threshold (e.g. elections per hour).
type Entry struct {
	EventType     string
	MetricName    string
	Units         threshold.Unit
	UsesThreshold bool
}

// Metric reports whether the entry is a metric-based alert.
func (e Entry) Metric() bool {
	return e.MetricName != ""
}

// UnknownAlertError reports a definition row whose name has no catalog entry.
type UnknownAlertError struct {
	Name string
}

func (e *UnknownAlertError) Error() string {
	return fmt.Sprintf("no catalog entry for alert %q", e.Name)
}

// entries is the fixed catalog, keyed by the exact alert name as it appears
// in the definition table. Lookups are case-sensitive: authors copy the
// exact name rather than relying on fuzzy matching. Metric names verified
// against the Atlas API documentation.
var entries = map[string]Entry{
	"Oplog Window": {
		EventType:     EventOplogWindowRunningOut,
		UsesThreshold: true,
	},
	"Number of elections in last hour": {
		// TOO_MANY_ELECTIONS fires when election count exceeds threshold.
		EventType:     EventTooManyElections,
		UsesThreshold: true,
	},
	"Disk read IOPS on Data Partition": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "DISK_PARTITION_READ_IOPS_DATA",
		Units:      threshold.UnitRaw,
	},
	"Disk write IOPS on Data Partition": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "DISK_PARTITION_WRITE_IOPS_DATA",
		Units:      threshold.UnitRaw,
	},
	"Disk read latency on Data Partition": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "DISK_PARTITION_READ_LATENCY_DATA",
		Units:      threshold.UnitMilliseconds,
	},
	"Disk write latency on Data Partition": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "DISK_PARTITION_WRITE_LATENCY_DATA",
		Units:      threshold.UnitMilliseconds,
	},
	"Swap Usage": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "SWAP_USAGE_USED",
		Units:      threshold.UnitBytes,
	},
	"Host is Down": {
		EventType:     EventHostDown,
		UsesThreshold: true,
	},
	"Replica set has no primary": {
		EventType: EventNoPrimary,
	},
	"Page Faults": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "EXTRA_INFO_PAGE_FAULTS",
		Units:      threshold.UnitRaw,
	},
	"Replication Lag": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "OPLOG_SLAVE_LAG_MASTER_TIME",
		Units:      threshold.UnitSeconds,
	},
	"Failed backup": {
		EventType: EventSnapshotFailed,
	},
	"Restored backup": {
		EventType: EventRestoreSuccessful,
	},
	"Fallback snapshot failed": {
		EventType: EventSnapshotFallbackFailed,
	},
	"Backup schedule behind": {
		EventType:     EventSnapshotBehind,
		UsesThreshold: true,
	},
	"Queues: Readers": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "GLOBAL_LOCK_CURRENT_QUEUE_READERS",
		Units:      threshold.UnitRaw,
	},
	"Queues: Writers": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "GLOBAL_LOCK_CURRENT_QUEUE_WRITERS",
		Units:      threshold.UnitRaw,
	},
	"Restarts last hour": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "RESTARTS_IN_LAST_HOUR",
		Units:      threshold.UnitRaw,
	},
	"Replica set elected a new primary": {
		EventType: EventPrimaryElected,
	},
	"System: CPU (User) %": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "NORMALIZED_SYSTEM_CPU_USER",
		Units:      threshold.UnitRaw,
	},
	"Disk space % used on Data Partition": {
		EventType:  EventOutsideMetricThreshold,
		MetricName: "DISK_PARTITION_SPACE_USED_DATA",
		Units:      threshold.UnitRaw,
	},
}

// Lookup returns the catalog entry for an exact alert name.
func Lookup(name string) (Entry, error) {
	entry, ok := entries[name]
	if !ok {
		return Entry{}, &UnknownAlertError{Name: name}
	}
	return entry, nil
}

// Names returns all catalog keys in sorted order, for diagnostics.
func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
