package alerting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlasops/atlasalerts/internal/logger"
)

// WriteArtifacts renders every configuration's wire document into dir as
// numbered JSON files, clearing stale *.json artifacts from earlier runs
// first. The written paths are returned in configuration order. Dry runs
// stop here; create runs keep the files as an inspectable record of what
// was submitted.
func WriteArtifacts(dir string, configs []AlertConfig, log logger.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	stale, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifact directory %s: %w", dir, err)
	}
	if len(stale) > 0 {
		log.Info("removing stale alert artifacts", logger.Int("count", len(stale)))
		for _, path := range stale {
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("failed to remove stale artifact %s: %w", path, err)
			}
		}
	}

	paths := make([]string, 0, len(configs))
	for i := range configs {
		cfg := &configs[i]
		raw, err := cfg.MarshalWire()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, cfg.FileName(i+1))
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write artifact %s: %w", path, err)
		}
		log.Info("generated alert artifact", logger.String("file", filepath.Base(path)))
		paths = append(paths, path)
	}
	return paths, nil
}
