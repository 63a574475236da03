package ports

import "modpm/internal/types"

// ArchivePort packs and unpacks package distribution archives
// (.tar.gz).
type ArchivePort interface {
	Extract(archive string, dest string) error
	Create(archive string, files []types.PackageFile) error
}
