package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modpm/internal/types"
)

// Uninstall removes an installed package by name.
func (inst *Installer) Uninstall(ctx context.Context, name string) error {
	manifest, err := inst.FindPackage(name, false)
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
			log.Warn().Str("package", name).Msg("package not installed")
		}
		return err
	}
	return inst.UninstallDirectory(ctx, manifest.Directory)
}

// UninstallDirectory removes a package install directory: runs the
// pre-uninstall hook, removes every ledger-listed path (tolerating
// per-file errors), then removes the directory tree itself.
func (inst *Installer) UninstallDirectory(ctx context.Context, directory string) error {
	manifestPath := filepath.Join(directory, types.ManifestFilename)
	if linkTarget, ok := readLinkMarker(directory); ok {
		manifestPath = filepath.Join(linkTarget, types.ManifestFilename)
	}

	manifest, err := inst.Manifests.Load(manifestPath)
	if err != nil {
		if errbuilder.CodeOf(err) != errbuilder.CodeNotFound {
			return err
		}
		if !inst.Force {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("cannot uninstall %q: no package manifest, remove the directory manually or pass --force", directory))
		}
		log.Info().Str("dir", directory).Msg("removing directory without manifest")
		return forceRemoveTree(directory)
	}
	manifest.Directory = directory

	log.Info().Str("package", manifest.Identifier()).Str("dir", directory).
		Bool("upgrade", inst.Upgrade).Msg("uninstalling")

	if err := inst.Lifecycle.Run(ctx, manifest, types.HookPreUninstall, nil); err != nil {
		return err
	}

	installed, ok := readLedger(directory)
	if !ok {
		log.Warn().Str("dir", directory).Msgf("no %s found in package directory", types.LedgerFilename)
	}
	for _, path := range installed {
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("path", path).Msg("already removed")
			} else {
				log.Warn().Str("path", path).Err(err).Msg("failed to remove")
			}
			continue
		}
		log.Debug().Str("path", path).Msg("removed")
	}

	return forceRemoveTree(directory)
}
