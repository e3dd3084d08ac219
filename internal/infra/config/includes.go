package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxIncludeDepth = 10

// applyIncludes overlays every file listed in cfg.Includes onto cfg, in order.
// Paths are relative to the including file and may be globs. Included files
// may include further files. Cycles and paths outside the config directory
// are rejected.
func applyIncludes(cfg *Config, from string) error {
	return includeFrom(cfg, from, map[string]bool{from: true}, 0)
}

func includeFrom(cfg *Config, from string, visited map[string]bool, depth int) error {
	if depth >= maxIncludeDepth {
		return fmt.Errorf("config includes: nesting deeper than %d", maxIncludeDepth)
	}

	patterns := cfg.Includes
	cfg.Includes = nil
	baseDir := filepath.Dir(from)

	for _, pattern := range patterns {
		paths, err := expandInclude(pattern, baseDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if visited[p] {
				return fmt.Errorf("config includes: %s is included twice (cycle)", p)
			}
			visited[p] = true
			if err := overlayFile(cfg, p); err != nil {
				return err
			}
			if len(cfg.Includes) > 0 {
				if err := includeFrom(cfg, p, visited, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// expandInclude resolves pattern against baseDir into absolute file paths.
func expandInclude(pattern, baseDir string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	pattern = filepath.Clean(pattern)

	if rel, err := filepath.Rel(baseDir, pattern); err == nil && strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("config includes: %s is outside %s", pattern, baseDir)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("config includes: bad glob %q: %w", pattern, err)
	}
	return matches, nil
}

func overlayFile(cfg *Config, path string) error {
	if err := validatePermissions(path); err != nil {
		return fmt.Errorf("config includes: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config includes: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config includes: parse %s: %w", path, err)
	}
	return nil
}
