// Package testutil provides shared test helpers used across unit test
// packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"modpm/internal/types"
)

// WriteManifest writes a manifest file with the given YAML body into
// dir and returns its path.
func WriteManifest(t *testing.T, dir string, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, types.ManifestFilename)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// WritePackage lays out a minimal source package: a manifest plus the
// given relative files with placeholder content.
func WritePackage(t *testing.T, dir string, manifest string, files ...string) {
	t.Helper()
	WriteManifest(t, dir, manifest)
	for _, rel := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+rel+"\n"), 0o644))
	}
}
