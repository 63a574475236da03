package adapters

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"

	"modpm/internal/ports"
	"modpm/internal/types"
)

// ArchiveAdapter packs and unpacks .tar.gz distribution archives.
type ArchiveAdapter struct{}

func NewArchiveAdapter() ArchiveAdapter {
	return ArchiveAdapter{}
}

func (a ArchiveAdapter) Extract(archive string, dest string) error {
	file, err := os.Open(archive)
	if err != nil {
		return archiveError("failed to open archive", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return archiveError("invalid gzip stream", err)
	}
	defer gz.Close()

	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return archiveError("corrupt archive", err)
		}

		rel := filepath.FromSlash(header.Name)
		if !filepath.IsLocal(rel) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("archive entry %q escapes the destination directory", header.Name))
		}
		target := filepath.Join(dest, rel)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return archiveError("failed to create directory", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return archiveError("failed to create directory", err)
			}
			if err := writeEntry(target, reader, header.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and special files are not part of the archive
			// format; skip anything else.
			continue
		}
	}
}

func writeEntry(target string, reader io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return archiveError("failed to create file", err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return archiveError("failed to extract file", err)
	}
	return out.Close()
}

func (a ArchiveAdapter) Create(archive string, files []types.PackageFile) error {
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return archiveError("failed to create output directory", err)
	}
	out, err := os.Create(archive)
	if err != nil {
		return archiveError("failed to create archive", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	writer := tar.NewWriter(gz)

	for _, file := range files {
		if err := addEntry(writer, file); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return archiveError("failed to finalize archive", err)
	}
	if err := gz.Close(); err != nil {
		return archiveError("failed to finalize archive", err)
	}
	return nil
}

func addEntry(writer *tar.Writer, file types.PackageFile) error {
	info, err := os.Stat(file.Source)
	if err != nil {
		return archiveError("failed to stat file", err)
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return archiveError("failed to build archive header", err)
	}
	header.Name = strings.TrimPrefix(filepath.ToSlash(file.Rel), "/")

	if err := writer.WriteHeader(header); err != nil {
		return archiveError("failed to write archive header", err)
	}
	in, err := os.Open(file.Source)
	if err != nil {
		return archiveError("failed to open file", err)
	}
	defer in.Close()
	if _, err := io.Copy(writer, in); err != nil {
		return archiveError("failed to write archive entry", err)
	}
	return nil
}

func archiveError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}

var _ ports.ArchivePort = ArchiveAdapter{}
