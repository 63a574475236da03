package ports

import "modpm/internal/types"

// ManifestPort loads a package descriptor from disk. Load fails with a
// CodeNotFound error when the file is absent and a CodeInvalidArgument
// error when the descriptor is malformed.
type ManifestPort interface {
	Load(path string) (types.PackageManifest, error)
}
