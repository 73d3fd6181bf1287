// Package atlas wraps the MongoDB Atlas CLI's alert-settings command
// surface behind a narrow interface so the engine never touches a
// subprocess directly.
package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atlasops/atlasalerts/internal/logger"
)

// DefaultBinary is the Atlas CLI executable name resolved via PATH.
const DefaultBinary = "atlas"

// defaultTimeout bounds each CLI invocation when the caller configured none.
const defaultTimeout = 60 * time.Second

// ErrNotFound marks a delete against an alert ID the service no longer has.
var ErrNotFound = errors.New("alert not found")

// AlertService is the remote alert command surface the engine depends on.
// config is the wire-shape JSON document for one alert.
type AlertService interface {
	Create(ctx context.Context, projectID string, config []byte) (string, error)
	Delete(ctx context.Context, projectID, alertID string) error
	List(ctx context.Context, projectID string) ([]string, error)
}

// CommandError reports a failed CLI invocation, carrying the service's
// own message from stderr.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("atlas %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CLI implements AlertService by shelling out to the Atlas CLI.
type CLI struct {
	binary  string
	timeout time.Duration
	log     logger.Logger
}

// NewCLI creates a CLI client. binary defaults to "atlas" and timeout to
// 60s when zero-valued.
func NewCLI(binary string, timeout time.Duration, log logger.Logger) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CLI{binary: binary, timeout: timeout, log: log}
}

// Preflight verifies the Atlas CLI is installed and authenticated before
// any mutating run.
func (c *CLI) Preflight(ctx context.Context) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return fmt.Errorf("atlas CLI is not installed or not working (install from https://www.mongodb.com/try/download/atlascli): %w", err)
	}
	if _, err := c.run(ctx, "config", "list"); err != nil {
		return fmt.Errorf("atlas CLI is not authenticated, run 'atlas config init' first: %w", err)
	}
	return nil
}

// Create submits one alert configuration and returns the remote alert ID.
// The CLI only accepts configurations via file, so the document is staged
// in a temp file for the duration of the call.
func (c *CLI) Create(ctx context.Context, projectID string, config []byte) (string, error) {
	f, err := os.CreateTemp("", "atlas-alert-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to stage alert config: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck // best effort cleanup
	if _, err := f.Write(config); err != nil {
		f.Close() //nolint:errcheck
		return "", fmt.Errorf("failed to stage alert config: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to stage alert config: %w", err)
	}

	out, err := c.run(ctx,
		"alerts", "settings", "create",
		"--file", f.Name(),
		"--projectId", projectID,
		"--output", "json")
	if err != nil {
		return "", err
	}
	return parseCreateOutput(out)
}

// Delete removes one alert configuration. Returns ErrNotFound (wrapped)
// when the service reports the ID as already gone.
func (c *CLI) Delete(ctx context.Context, projectID, alertID string) error {
	_, err := c.run(ctx,
		"alerts", "settings", "delete", alertID,
		"--projectId", projectID,
		"--force")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && isNotFoundMessage(cmdErr.Stderr) {
			return fmt.Errorf("%w: %s", ErrNotFound, alertID)
		}
		return err
	}
	return nil
}

// List returns the IDs of every alert configuration in the project.
func (c *CLI) List(ctx context.Context, projectID string) ([]string, error) {
	out, err := c.run(ctx,
		"alerts", "settings", "list",
		"--projectId", projectID,
		"--output", "json")
	if err != nil {
		return nil, err
	}
	return parseListOutput(out)
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Debug("running atlas CLI", logger.String("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			err = fmt.Errorf("timed out after %s: %w", c.timeout, runCtx.Err())
		}
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// parseCreateOutput extracts the alert ID from the create command's JSON
// response.
func parseCreateOutput(out []byte) (string, error) {
	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out, &response); err != nil {
		return "", fmt.Errorf("unexpected create response: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("create response carries no alert id")
	}
	return response.ID, nil
}

// parseListOutput extracts alert IDs from the list command's JSON response,
// which is either a paginated {"results": [...]} envelope or a bare array
// depending on the CLI version.
func parseListOutput(out []byte) ([]string, error) {
	type alert struct {
		ID string `json:"id"`
	}
	var envelope struct {
		Results []alert `json:"results"`
	}
	var alerts []alert
	if err := json.Unmarshal(out, &envelope); err == nil {
		alerts = envelope.Results
	} else {
		var bare []alert
		if err := json.Unmarshal(out, &bare); err != nil {
			return nil, fmt.Errorf("unexpected list response: %w", err)
		}
		alerts = bare
	}

	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func isNotFoundMessage(stderr string) bool {
	return strings.Contains(stderr, "NOT_FOUND") || strings.Contains(stderr, "404")
}
