package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpm/internal/types"
)

func TestManifestFileAdapterLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, types.ManifestFilename)
	body := `name: demo
version: 1.2.0
description: a demo package
bin:
  demo: scripts/run
dependencies:
  second: ^2.0.0
  first: ./first
python_dependencies:
  requests: ">=2.0"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	manifest, err := NewManifestFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", manifest.Name)
	assert.Equal(t, "1.2.0", manifest.Version)
	assert.Equal(t, "scripts/run", manifest.Bin["demo"])
	assert.Equal(t, dir, manifest.Directory)

	// Declaration order is preserved.
	require.Len(t, manifest.Dependencies, 2)
	assert.Equal(t, "second", manifest.Dependencies[0].Name)
	assert.Equal(t, "first", manifest.Dependencies[1].Name)
	require.Len(t, manifest.PythonDependencies, 1)
	assert.Equal(t, ">=2.0", manifest.PythonDependencies[0].Spec)
}

func TestManifestFileAdapterLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewManifestFileAdapter().Load(filepath.Join(dir, "absent", types.ManifestFilename))
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))
		_, err := NewManifestFileAdapter().Load(path)
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	})

	t.Run("missing identity", func(t *testing.T) {
		path := filepath.Join(dir, "noid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("description: nothing else\n"), 0o644))
		_, err := NewManifestFileAdapter().Load(path)
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	})
}
