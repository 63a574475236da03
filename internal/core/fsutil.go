package core

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/types"
)

// readLinkMarker returns the develop-mode link target of an install
// directory, if the directory is a link install.
func readLinkMarker(directory string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(directory, types.LinkFilename))
	if err != nil {
		return "", false
	}
	target := strings.TrimRight(string(data), "\n")
	if target == "" {
		return "", false
	}
	return target, true
}

// writeLedger persists the installed-files ledger next to the manifest
// copy, one absolute path per line, newline-terminated.
func writeLedger(targetDir string, paths []string) error {
	var builder strings.Builder
	for _, path := range paths {
		builder.WriteString(path)
		builder.WriteString("\n")
	}
	err := os.WriteFile(filepath.Join(targetDir, types.LedgerFilename), []byte(builder.String()), 0o644)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write installed-files ledger").
			WithCause(err)
	}
	return nil
}

// readLedger loads the installed-files ledger of a package directory.
// A missing ledger is reported through ok, not as an error.
func readLedger(directory string) (paths []string, ok bool) {
	data, err := os.ReadFile(filepath.Join(directory, types.LedgerFilename))
	if err != nil {
		return nil, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, true
}

// forceRemoveTree removes a directory tree. On a permission error the
// tree's permissions are forced open and removal is retried once.
func forceRemoveTree(directory string) error {
	err := os.RemoveAll(directory)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove directory tree").
			WithCause(err)
	}
	_ = filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		_ = os.Chmod(path, 0o777)
		return nil
	})
	if err := os.RemoveAll(directory); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove directory tree").
			WithCause(err)
	}
	return nil
}

func copyFile(src string, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()
	info, err := source.Stat()
	if err != nil {
		return err
	}
	dest, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return err
	}
	return dest.Close()
}
