package dev

import (
	"path/filepath"

	"github.com/vango-dev/jsxc/internal/config"
)

// CollectWatchPaths returns a normalized list of watch paths for the
// project: the build input directory followed by dev.watch entries.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := cfg.WatchPaths()

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

// watchIgnore returns the ignore patterns for cfg: the defaults plus the
// output and cache directories, so writing modules never triggers a rebuild.
func watchIgnore(cfg *config.Config) []string {
	ignore := append([]string(nil), DefaultIgnore...)
	for _, dir := range []string{cfg.OutputPath(), cfg.CachePath()} {
		if dir != "" {
			ignore = append(ignore, filepath.ToSlash(dir))
		}
	}
	return ignore
}
