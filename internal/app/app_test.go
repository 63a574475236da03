package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpm/internal/types"
	"modpm/tests/testutil"
)

func TestServiceInstallPathSpec(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	testutil.WritePackage(t, filepath.Join(workspace, "pkg"),
		"name: pkg\nversion: 1.0.0\n", "lib/code.ext")

	service := NewService(nil)
	result, err := service.Install(context.Background(), InstallRequest{Specs: []string{"./pkg"}})
	require.NoError(t, err)
	assert.Equal(t, types.LocationLocal, result.Location)
	require.Len(t, result.Installed, 1)
	assert.Equal(t, types.PackageInfo{Name: "pkg", Version: "1.0.0"}, result.Installed[0])

	installed := filepath.Join(workspace, types.ModulesDirname, "pkg")
	assert.FileExists(t, filepath.Join(installed, types.ManifestFilename))
	assert.FileExists(t, filepath.Join(installed, "lib", "code.ext"))
	assert.FileExists(t, filepath.Join(installed, types.LedgerFilename))
}

func TestServiceInstallDevelopSpec(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	testutil.WritePackage(t, filepath.Join(workspace, "pkg"),
		"name: pkg\nversion: 1.0.0\n", "lib/code.ext")

	service := NewService(nil)
	_, err := service.Install(context.Background(), InstallRequest{
		Specs:   []string{"./pkg"},
		Develop: true,
	})
	require.NoError(t, err)

	installed := filepath.Join(workspace, types.ModulesDirname, "pkg")
	assert.FileExists(t, filepath.Join(installed, types.LinkFilename))
	assert.NoFileExists(t, filepath.Join(installed, "lib", "code.ext"))
}

func TestServiceInstallCurrentDependencies(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	testutil.WritePackage(t, filepath.Join(workspace, "dep"), "name: dep\nversion: 1.0.0\n")
	testutil.WriteManifest(t, workspace,
		"name: app\nversion: 1.0.0\ndependencies:\n  dep: ./dep\n")

	service := NewService(nil)
	result, err := service.Install(context.Background(), InstallRequest{})
	require.NoError(t, err)
	assert.Empty(t, result.Installed)

	assert.FileExists(t, filepath.Join(workspace, types.ModulesDirname, "dep", types.ManifestFilename))
}

func TestServiceInstallMissingCurrentManifest(t *testing.T) {
	t.Chdir(t.TempDir())
	service := NewService(nil)
	_, err := service.Install(context.Background(), InstallRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestServiceInstallConflictingLocations(t *testing.T) {
	service := NewService(nil)
	_, err := service.Install(context.Background(), InstallRequest{Global: true, Root: true})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestServiceUninstall(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	testutil.WritePackage(t, filepath.Join(workspace, "pkg"), "name: pkg\nversion: 1.0.0\n")

	service := NewService(nil)
	_, err := service.Install(context.Background(), InstallRequest{Specs: []string{"./pkg"}})
	require.NoError(t, err)

	result, err := service.Uninstall(context.Background(), UninstallRequest{Name: "pkg"})
	require.NoError(t, err)
	assert.Equal(t, "pkg", result.Name)
	assert.NoDirExists(t, filepath.Join(workspace, types.ModulesDirname, "pkg"))
}

func TestServiceUninstallRequiresName(t *testing.T) {
	service := NewService(nil)
	_, err := service.Uninstall(context.Background(), UninstallRequest{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestServiceDist(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	testutil.WritePackage(t, workspace,
		"name: demo\nversion: 1.2.0\n", "lib/code.ext", "build.cache")
	require.NoError(t, os.WriteFile(filepath.Join(workspace, types.IgnoreFilename),
		[]byte("*.cache\n"), 0o644))

	service := NewService(nil)
	result, err := service.Dist(context.Background(), DistRequest{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("dist", "demo-1.2.0.tar.gz"), result.ArchivePath)
	assert.FileExists(t, result.ArchivePath)

	// The archive round-trips through an install.
	_, err = service.Install(context.Background(), InstallRequest{Specs: []string{result.ArchivePath}})
	require.Error(t, err) // relative non-dot path is not a path source
}

func TestServiceDistInstallRoundTrip(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	pkgDir := filepath.Join(workspace, "pkg")
	testutil.WritePackage(t, pkgDir, "name: demo\nversion: 1.2.0\n", "lib/code.ext")

	service := NewService(nil)
	dist, err := service.Dist(context.Background(), DistRequest{Directory: pkgDir})
	require.NoError(t, err)

	_, err = service.Install(context.Background(), InstallRequest{
		Specs: []string{"./" + filepath.ToSlash(mustRel(t, workspace, dist.ArchivePath))},
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(workspace, types.ModulesDirname, "demo", "lib", "code.ext"))
}

func mustRel(t *testing.T, base string, target string) string {
	t.Helper()
	rel, err := filepath.Rel(base, target)
	require.NoError(t, err)
	return rel
}
