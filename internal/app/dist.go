package app

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"modpm/internal/core"
	"modpm/internal/shared"
	"modpm/internal/types"
)

// Dist packs the package in the given directory into a distribution
// archive under the output directory.
func (s Service) Dist(ctx context.Context, req DistRequest) (DistResult, error) {
	directory := req.Directory
	if directory == "" {
		directory = "."
	}

	manifest, err := s.Manifests.Load(filepath.Join(directory, types.ManifestFilename))
	if err != nil {
		return DistResult{}, err
	}
	if err := core.ValidateManifest(ctx, manifest); err != nil {
		return DistResult{}, err
	}

	if err := s.Lifecycle.Run(ctx, manifest, types.HookPreDist, nil); err != nil {
		return DistResult{}, err
	}

	files, err := core.WalkPackageFiles(manifest)
	if err != nil {
		return DistResult{}, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(directory, "dist")
	}
	archive := filepath.Join(outputDir, shared.PackageArchiveName(manifest.Name, manifest.Version))

	log.Info().Str("package", manifest.Identifier()).Str("archive", archive).
		Int("files", len(files)).Msg("packing distribution archive")
	if err := s.Archives.Create(archive, files); err != nil {
		return DistResult{}, err
	}

	if err := s.Lifecycle.Run(ctx, manifest, types.HookPostDist, nil); err != nil {
		return DistResult{}, err
	}
	return DistResult{ArchivePath: archive}, nil
}
