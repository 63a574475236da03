package core

import (
	"context"
	"fmt"

	semver "github.com/Masterminds/semver/v3"
	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/types"
)

// ValidateManifest checks the loaded descriptor before any install
// step mutates the tree: the version must parse and every dependency
// line must be a valid requirement specifier.
func ValidateManifest(ctx context.Context, manifest types.PackageManifest) error {
	assert.NotEmpty(ctx, manifest.Name, "manifest name must be set")
	assert.NotEmpty(ctx, manifest.Version, "manifest version must be set")

	if _, err := semver.NewVersion(manifest.Version); err != nil {
		return invalidManifest(fmt.Sprintf("bad version %q for %q", manifest.Version, manifest.Name), err)
	}
	sets := []types.DependencySet{
		manifest.Dependencies,
		manifest.DevDependencies,
	}
	for _, set := range sets {
		for _, entry := range set {
			if _, err := ParseRequirement(entry.Spec, entry.Name, false); err != nil {
				return invalidManifest(fmt.Sprintf("dependency %q", entry.Name), err)
			}
		}
	}
	return nil
}

func invalidManifest(detail string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid package manifest: " + detail).
		WithCause(cause)
}
