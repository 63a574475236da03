package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"modpm/internal/ports"
	"modpm/internal/types"
)

type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) Load(path string) (types.PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.PackageManifest{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("package manifest not found").
				WithCause(err)
		}
		return types.PackageManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read package manifest").
			WithCause(err)
	}

	var manifest types.PackageManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return types.PackageManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid package manifest").
			WithCause(err)
	}
	if manifest.Name == "" || manifest.Version == "" {
		return types.PackageManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid package manifest: name and version are required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	manifest.Directory = filepath.Dir(abs)
	return manifest, nil
}

var _ ports.ManifestPort = ManifestFileAdapter{}
