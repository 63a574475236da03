package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpm/internal/types"
	"modpm/tests/testutil"
)

func TestCheckIncludeFile(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		include []string
		exclude []string
		want    bool
	}{
		{name: "no rules includes everything", rel: "src/main.ext", want: true},
		{name: "include list admits matching path", rel: "src/main.ext", include: []string{"src/*"}, want: true},
		{name: "include list drops non-matching path", rel: "docs/readme.md", include: []string{"src/*"}, want: false},
		{name: "exclude wins", rel: "build.cache", include: []string{"*"}, exclude: []string{"*.cache"}, want: false},
		{name: "directory prefix exclude", rel: "dist/pkg.tar.gz", exclude: []string{"dist"}, want: false},
		{name: "double star glob", rel: "a/b/c.pyc", exclude: []string{"**/*.pyc"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckIncludeFile(tt.rel, tt.include, tt.exclude)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalkPackageFilesDefaults(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePackage(t, dir, "name: demo\nversion: 1.0.0\n",
		"src/main.ext",
		"src/util.ext",
		".git/HEAD",
		"cache.pyc",
		"dist/old.tar.gz",
		types.ModulesDirname+"/dep/module.yaml",
	)

	manifest := types.PackageManifest{Name: "demo", Version: "1.0.0", Directory: dir}
	files, err := WalkPackageFiles(manifest)
	require.NoError(t, err)

	rels := make([]string, 0, len(files))
	for _, file := range files {
		rels = append(rels, file.Rel)
	}
	assert.ElementsMatch(t, []string{types.ManifestFilename, "src/main.ext", "src/util.ext"}, rels)
}

func TestWalkPackageFilesIncludeList(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePackage(t, dir, "name: demo\nversion: 1.0.0\n",
		"src/main.ext", "docs/readme.md")

	manifest := types.PackageManifest{
		Name: "demo", Version: "1.0.0", Directory: dir,
		IncludeFiles: []string{"src/*"},
	}
	files, err := WalkPackageFiles(manifest)
	require.NoError(t, err)

	rels := make([]string, 0, len(files))
	for _, file := range files {
		rels = append(rels, file.Rel)
	}
	// The manifest file is always included.
	assert.ElementsMatch(t, []string{types.ManifestFilename, "src/main.ext"}, rels)
}

func TestWalkPackageFilesIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePackage(t, dir, "name: demo\nversion: 1.0.0\n",
		"src/main.ext", "notes.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.IgnoreFilename),
		[]byte("# scratch files\nnotes.txt\n"), 0o644))

	manifest := types.PackageManifest{Name: "demo", Version: "1.0.0", Directory: dir}
	files, err := WalkPackageFiles(manifest)
	require.NoError(t, err)

	for _, file := range files {
		assert.NotEqual(t, "notes.txt", file.Rel)
	}
}
