package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/core"
	"modpm/internal/types"
)

// Install runs one install operation: either the requirement specifiers
// given on the command line, or the dependencies of the manifest in the
// current directory when no specifier is given.
func (s Service) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	installer, location, err := s.newInstaller(req)
	if err != nil {
		return InstallResult{}, err
	}

	var installed []types.PackageInfo
	if len(req.Specs) == 0 {
		if err := s.installCurrent(ctx, installer, req); err != nil {
			return InstallResult{}, err
		}
	} else {
		for _, spec := range req.Specs {
			info, err := s.installSpec(ctx, installer, spec, req)
			if err != nil {
				return InstallResult{}, err
			}
			installed = append(installed, info)
		}
	}

	if len(req.PipArgs) > 0 {
		if err := installer.InstallPythonDependencies(ctx, nil, req.PipArgs); err != nil {
			return InstallResult{}, err
		}
	}
	if err := installer.RelinkPipScripts(); err != nil {
		return InstallResult{}, err
	}
	return InstallResult{Installed: installed, Location: location}, nil
}

func (s Service) newInstaller(req InstallRequest) (*core.Installer, types.InstallLocation, error) {
	location, err := core.ResolveLocation(req.Global, req.Root)
	if err != nil {
		return nil, "", err
	}
	dirs, err := core.DirectoriesFor(location)
	if err != nil {
		return nil, "", err
	}

	collaborators := core.Collaborators{
		Manifests:  s.Manifests,
		Lifecycle:  s.Lifecycle,
		Scripts:    s.Scripts(dirs, location),
		VCS:        s.VCS,
		Bridge:     s.Bridge,
		Archives:   s.Archives,
		Registries: s.Registries,
	}
	options := core.Options{
		Location:        location,
		Dirs:            dirs,
		Upgrade:         req.Upgrade,
		Recursive:       req.Recursive,
		IgnoreInstalled: req.IgnoreInstalled,
		Verbose:         req.Verbose,
		RuntimeVersion:  req.RuntimeVersion,
	}
	return core.NewInstaller(collaborators, options), location, nil
}

// installCurrent installs the dependency closure of the package in the
// working directory without installing the package itself.
func (s Service) installCurrent(ctx context.Context, installer *core.Installer, req InstallRequest) error {
	manifest, err := s.Manifests.Load(types.ManifestFilename)
	if err != nil {
		return err
	}
	if err := core.ValidateManifest(ctx, manifest); err != nil {
		return err
	}
	return installer.InstallDependenciesFor(ctx, manifest, req.Dev)
}

func (s Service) installSpec(ctx context.Context, installer *core.Installer, spec string, req InstallRequest) (types.PackageInfo, error) {
	parsed, err := core.ParseRequirement(spec, "", true)
	if err != nil {
		return types.PackageInfo{}, err
	}
	opts := core.DirInstallOptions{
		Internal: req.Internal || parsed.Internal,
		Pure:     req.Pure || parsed.Pure,
		Dev:      req.Dev,
		Registry: parsed.Registry,
	}

	switch parsed.Kind() {
	case types.SourceGit:
		return installer.InstallFromGit(ctx, parsed.GitURL, parsed.Recursive, opts)

	case types.SourcePath:
		path, err := filepath.Abs(parsed.Path)
		if err != nil {
			return types.PackageInfo{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid path %q", parsed.Path)).
				WithCause(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return types.PackageInfo{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("path %q does not exist", parsed.Path)).
				WithCause(err)
		}
		var manifest types.PackageManifest
		if info.IsDir() {
			opts.Develop = req.Develop || parsed.Link
			manifest, err = installer.InstallFromDirectory(ctx, path, opts)
		} else {
			manifest, err = installer.InstallFromArchive(ctx, path, opts)
		}
		if err != nil {
			return types.PackageInfo{}, err
		}
		return types.PackageInfo{Name: manifest.Name, Version: manifest.Version}, nil

	default:
		selector := parsed.Selector
		if selector == nil {
			selector = core.MatchAnySelector()
		}
		return installer.InstallFromRegistry(ctx, parsed.Name, selector, opts)
	}
}
