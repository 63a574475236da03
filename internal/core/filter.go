package core

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"

	"modpm/internal/types"
)

// defaultExcludePatterns are always applied when copying package files.
// VCS metadata, caches and previous build output never belong in an
// installed tree.
var defaultExcludePatterns = []string{
	".DS_Store",
	".svn/**",
	".git*",
	types.ModulesDirname + "/**",
	"*.pyc",
	"*.pyo",
	"dist/**",
}

// matchPattern reports whether a package-relative path matches one
// pattern. Exact match, directory-prefix match and glob match are all
// supported.
func matchPattern(rel string, pattern string) bool {
	if rel == pattern {
		return true
	}
	if strings.HasPrefix(rel, pattern+"/") {
		return true
	}
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

func matchAnyPattern(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// CheckIncludeFile decides whether a package-relative path is part of
// the distribution. Excludes are checked first; when an explicit
// include list exists the path must additionally match it.
func CheckIncludeFile(rel string, include []string, exclude []string) bool {
	if matchAnyPattern(rel, exclude) {
		return false
	}
	if len(include) == 0 {
		return true
	}
	return matchAnyPattern(rel, include)
}

// loadIgnoreRules reads ignore-file style exclude rules from the
// package's ignore file, if present.
func loadIgnoreRules(dir string) []string {
	file, err := os.Open(filepath.Join(dir, types.IgnoreFilename))
	if err != nil {
		return nil
	}
	defer file.Close()

	var rules []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, strings.TrimSuffix(line, "/"))
	}
	return rules
}

// WalkPackageFiles walks the files included in a package and returns
// (source, relative) pairs. The manifest file is always included.
// Ignore-file rules apply only when no explicit include list is given.
func WalkPackageFiles(manifest types.PackageManifest) ([]types.PackageFile, error) {
	include := manifest.IncludeFiles
	exclude := append(append([]string(nil), manifest.ExcludeFiles...), defaultExcludePatterns...)
	if len(include) == 0 {
		exclude = append(exclude, loadIgnoreRules(manifest.Directory)...)
	}

	var files []types.PackageFile
	err := filepath.WalkDir(manifest.Directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(manifest.Directory, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == types.ManifestFilename || CheckIncludeFile(rel, include, exclude) {
			files = append(files, types.PackageFile{Source: path, Rel: rel})
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan package files").
			WithCause(err)
	}
	return files, nil
}
