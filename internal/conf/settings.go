// Package conf loads tool settings from a YAML file, environment
// variables, and flag bindings, in that order of increasing precedence.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atlasops/atlasalerts/internal/tracking"
)

// envPrefix namespaces environment overrides, e.g. ATLASALERTS_PROJECT_ID.
const envPrefix = "ATLASALERTS"

// defaultConfigName is the settings file looked up in the working
// directory when none is given explicitly.
const defaultConfigName = "atlasalerts"

// Settings holds every knob of the tool. Zero values fall back to the
// defaults registered in Load.
type Settings struct {
	// ProjectID is the Atlas project the alerts belong to.
	ProjectID string `mapstructure:"project_id"`
	// InputFile is the alert definition table (.xlsx or .csv).
	InputFile string `mapstructure:"input_file"`
	// OutputDir receives the rendered per-alert JSON artifacts.
	OutputDir string `mapstructure:"output_dir"`
	// LogDir receives timestamped run logs.
	LogDir string `mapstructure:"log_dir"`
	// TrackingFile persists the IDs of automation-created alerts.
	TrackingFile string `mapstructure:"tracking_file"`
	// NotificationRoles are the Atlas group roles notified by every alert.
	NotificationRoles []string `mapstructure:"notification_roles"`
	// NotificationEmail, when set, adds an EMAIL notification per alert.
	NotificationEmail string `mapstructure:"notification_email"`
	// AtlasBinary overrides the Atlas CLI executable.
	AtlasBinary string `mapstructure:"atlas_binary"`
	// CommandTimeout bounds each Atlas CLI invocation.
	CommandTimeout Duration `mapstructure:"command_timeout"`
}

// Load reads settings, layering defaults, an optional YAML file, and
// ATLASALERTS_* environment variables. A missing default settings file is
// fine; a missing explicitly-named one is an error.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	// Keys without a meaningful default still get registered so that
	// AutomaticEnv overrides reach Unmarshal.
	v.SetDefault("project_id", "")
	v.SetDefault("notification_email", "")
	v.SetDefault("input_file", "atlas_alert_configurations.xlsx")
	v.SetDefault("output_dir", "./alerts")
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("tracking_file", tracking.DefaultFileName)
	v.SetDefault("notification_roles", []string{"GROUP_OWNER"})
	v.SetDefault("atlas_binary", "atlas")
	v.SetDefault("command_timeout", "60s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read settings: %w", err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if settings.CommandTimeout <= 0 {
		settings.CommandTimeout = Duration(60 * time.Second)
	}
	return &settings, nil
}
