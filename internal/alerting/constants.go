// Package alerting builds canonical Atlas alert configurations from
// definition rows and drives their create/track/delete lifecycle.
package alerting

// Priority identifies which threshold column a configuration came from.
// PriorityBoth marks a single configuration standing in for identical low
// and high thresholds.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityHigh Priority = "high"
	PriorityBoth Priority = "both"
)

// Notification shape constants. The 60 minute re-notification interval is
// a uniform policy across every alert, not configurable per row.
const (
	NotificationIntervalMin = 60

	notificationTypeGroup = "GROUP"
	notificationTypeEmail = "EMAIL"
)

// DefaultNotificationRole is used when no roles are configured.
const DefaultNotificationRole = "GROUP_OWNER"

// ConfirmDeleteAllPhrase must be typed verbatim before a delete-all run,
// which removes default alerts this tool never created.
const ConfirmDeleteAllPhrase = "delete all"
