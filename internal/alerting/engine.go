package alerting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atlasops/atlasalerts/internal/atlas"
	"github.com/atlasops/atlasalerts/internal/logger"
	"github.com/atlasops/atlasalerts/internal/tracking"
)

// ErrConfirmationRequired is returned by DeleteAll before any remote call
// when the confirmation phrase was not supplied verbatim.
var ErrConfirmationRequired = fmt.Errorf("destructive operation requires typing %q to confirm", ConfirmDeleteAllPhrase)

// Failure records one configuration or alert ID a remote call failed for.
type Failure struct {
	Name string
	Err  error
}

// Summary reports the outcome of one lifecycle pass. Failed counts never
// hide behind a nil error: callers map Failed > 0 to a non-zero exit.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// Engine drives the create/track/delete lifecycle of alert configurations
// against the remote service. Execution is sequential: each configuration
// is processed to completion before the next, keeping the log and summary
// ordered. Alerts are independent, so a failed call is recorded and the
// pass continues.
type Engine struct {
	service atlas.AlertService
	store   *tracking.Store
	log     logger.Logger
}

// NewEngine creates an Engine over the given remote service and tracking
// store.
func NewEngine(service atlas.AlertService, store *tracking.Store, log logger.Logger) *Engine {
	return &Engine{service: service, store: store, log: log}
}

// CreateAll creates every configuration in the project, tracks the IDs of
// the ones that succeeded, and persists the tracking store once at the
// end of the pass.
func (e *Engine) CreateAll(ctx context.Context, projectID string, configs []AlertConfig) (Summary, error) {
	summary := Summary{Total: len(configs)}
	var created []string

	for i := range configs {
		cfg := &configs[i]
		e.log.Info("creating alert",
			logger.String("alert", cfg.DisplayName()),
			logger.Int("index", i+1),
			logger.Int("total", len(configs)))

		raw, err := cfg.MarshalWire()
		if err != nil {
			summary.record(cfg.DisplayName(), err, e.log)
			continue
		}
		id, err := e.service.Create(ctx, projectID, raw)
		if err != nil {
			summary.record(cfg.DisplayName(), err, e.log)
			continue
		}

		summary.Succeeded++
		created = append(created, id)
		e.log.Info("alert created",
			logger.String("alert", cfg.DisplayName()),
			logger.String("alert_id", id))
	}

	if len(created) > 0 {
		e.store.Add(projectID, created...)
		if err := e.store.Save(); err != nil {
			return summary, fmt.Errorf("alerts were created but tracking them failed: %w", err)
		}
		e.log.Info("tracked created alerts", logger.Int("count", len(created)))
	}
	return summary, nil
}

// DeleteTracked deletes only the alerts this tool created in the project,
// pruning successfully deleted IDs from the store. An ID the service no
// longer knows counts as deleted. Untracked alerts are never touched.
func (e *Engine) DeleteTracked(ctx context.Context, projectID string) (Summary, error) {
	ids := e.store.IDs(projectID)
	if len(ids) == 0 {
		e.log.Info("no automation-created alerts tracked for this project")
		return Summary{}, nil
	}

	e.log.Info("deleting tracked alerts", logger.Int("count", len(ids)))
	summary := Summary{Total: len(ids)}
	var deleted []string

	for _, id := range ids {
		err := e.service.Delete(ctx, projectID, id)
		switch {
		case err == nil:
			summary.Succeeded++
			deleted = append(deleted, id)
			e.log.Info("alert deleted", logger.String("alert_id", id))
		case errors.Is(err, atlas.ErrNotFound):
			summary.Succeeded++
			deleted = append(deleted, id)
			e.log.Info("alert already gone, untracking", logger.String("alert_id", id))
		default:
			summary.record(id, err, e.log)
		}
	}

	if len(deleted) > 0 {
		e.store.Remove(projectID, deleted...)
		if err := e.store.Save(); err != nil {
			return summary, fmt.Errorf("alerts were deleted but pruning tracking failed: %w", err)
		}
	}
	return summary, nil
}

// DeleteAll deletes every alert configuration in the project, including
// ones this tool never created, then clears the project's tracking entry.
// The confirmation phrase must match ConfirmDeleteAllPhrase exactly;
// otherwise nothing is attempted.
func (e *Engine) DeleteAll(ctx context.Context, projectID, confirmation string) (Summary, error) {
	if strings.ToLower(strings.TrimSpace(confirmation)) != ConfirmDeleteAllPhrase {
		return Summary{}, ErrConfirmationRequired
	}

	ids, err := e.service.List(ctx, projectID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list alerts: %w", err)
	}
	if len(ids) == 0 {
		e.log.Info("no alerts found in project")
	}

	summary := Summary{Total: len(ids)}
	for _, id := range ids {
		if err := e.service.Delete(ctx, projectID, id); err != nil && !errors.Is(err, atlas.ErrNotFound) {
			summary.record(id, err, e.log)
			continue
		}
		summary.Succeeded++
		e.log.Info("alert deleted", logger.String("alert_id", id))
	}

	e.store.Clear(projectID)
	if err := e.store.Save(); err != nil {
		return summary, fmt.Errorf("failed to clear tracking entry: %w", err)
	}
	return summary, nil
}

func (s *Summary) record(name string, err error, log logger.Logger) {
	s.Failed++
	s.Failures = append(s.Failures, Failure{Name: name, Err: err})
	log.Error("remote alert operation failed",
		logger.String("alert", name),
		logger.Error(err))
}
