package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludes selects markdown notes.
var DefaultIncludes = []string{
	"**/*.md",
	"**/*.markdown",
}

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	".obsidian",
	".trash",
	".vaultsearch",
	"node_modules",
	".DS_Store",
}

// IsExcludedDir reports whether a directory name matches any default
// exclusion pattern. This is used during traversal to skip entire subtrees.
func IsExcludedDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// inExcludedDir reports whether any directory component of relPath is a
// default exclusion.
func inExcludedDir(relPath string) bool {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, dir := range parts[:len(parts)-1] {
		if IsExcludedDir(dir) {
			return true
		}
	}
	return false
}

// MatchesInclude returns true if the given relative path matches any of the
// include patterns. If patterns is empty, everything is included.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns. If patterns is empty, nothing is excluded.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny checks relPath, then its base name, against doublestar patterns.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
