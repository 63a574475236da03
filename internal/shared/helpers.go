// Package shared provides common utility functions used across multiple
// packages in the modpm codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizePipName lowercases a Python package name and replaces
// underscores and dots with hyphens, following PEP 503 normalization.
func NormalizePipName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer("_", "-", ".", "-")
	return replacer.Replace(lower)
}

// PackageArchiveName concatenates the package name and version into the
// distribution archive filename. All package distribution archives are
// .tar.gz files.
func PackageArchiveName(name string, version string) string {
	return fmt.Sprintf("%s-%s.tar.gz", strings.ReplaceAll(name, "/", "-"), version)
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
