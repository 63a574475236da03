package adapters

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpm/internal/types"
)

func TestArchiveRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "module.yaml"), []byte("name: demo\nversion: 1.0.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lib", "code.ext"), []byte("payload"), 0o755))

	archive := filepath.Join(t.TempDir(), "demo-1.0.0.tar.gz")
	adapter := NewArchiveAdapter()
	require.NoError(t, adapter.Create(archive, []types.PackageFile{
		{Source: filepath.Join(src, "module.yaml"), Rel: "module.yaml"},
		{Source: filepath.Join(src, "lib", "code.ext"), Rel: "lib/code.ext"},
	}))

	dest := t.TempDir()
	require.NoError(t, adapter.Extract(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "lib", "code.ext"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	info, err := os.Stat(filepath.Join(dest, "lib", "code.ext"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestArchiveExtractRejectsEscapingPaths(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	out, err := os.Create(archive)
	require.NoError(t, err)
	gz := gzip.NewWriter(out)
	writer := tar.NewWriter(gz)
	require.NoError(t, writer.WriteHeader(&tar.Header{
		Name:     "../../escape.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     0,
	}))
	require.NoError(t, writer.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())

	err = NewArchiveAdapter().Extract(archive, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestArchiveExtractInvalidGzip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "garbage.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("not gzip at all"), 0o644))

	err := NewArchiveAdapter().Extract(archive, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}
