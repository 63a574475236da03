package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modpm/internal/ports"
	"modpm/internal/types"
)

// Collaborators bundles the external ports the engine drives.
type Collaborators struct {
	Manifests  ports.ManifestPort
	Lifecycle  ports.LifecyclePort
	Scripts    ports.ScriptPort
	VCS        ports.VCSPort
	Bridge     ports.BridgePort
	Archives   ports.ArchivePort
	Registries []ports.RegistryPort
}

// Options carries the per-invocation install policy.
type Options struct {
	Location types.InstallLocation
	Dirs     types.Directories

	Upgrade         bool
	Recursive       bool
	Force           bool
	IgnoreInstalled bool
	Verbose         bool

	// RuntimeVersion expands the interpreter-version placeholder in
	// entry-point script names (e.g. "3.11.2").
	RuntimeVersion string
}

// Installer is the resolution and installation engine. It decides the
// install location and scope, resolves requirements to source actions,
// mutates the on-disk package tree, and exposes uninstall as the
// inverse. One Installer serves one top-level operation; it is not
// safe for concurrent use.
type Installer struct {
	Collaborators
	Options

	stack      []stackEntry
	pythonLibs map[string]types.DistInfo
}

func NewInstaller(collaborators Collaborators, options Options) *Installer {
	return &Installer{
		Collaborators: collaborators,
		Options:       options,
		pythonLibs:    map[string]types.DistInfo{},
	}
}

// DirInstallOptions tunes one directory-install pass.
type DirInstallOptions struct {
	// Develop writes only a link marker pointing at the source
	// directory instead of copying files.
	Develop bool

	// Move renames the source directory into place. Used after a git
	// clone, where the source is already disposable.
	Move bool

	// Internal installs into the nearest enclosing package's nested
	// scope rather than the shared packages root.
	Internal bool

	// Pure skips entry-point script generation.
	Pure bool

	// Dev also installs the manifest's dev dependencies.
	Dev bool

	// Expect verifies the loaded manifest identity after a registry or
	// git fetch.
	Expect *types.PackageInfo

	// Registry pins registry acquisition of nested dependencies to a
	// named registry.
	Registry string
}

// InstalledPythonLibs returns the distribution metadata captured for
// bridged python dependencies during this invocation.
func (inst *Installer) InstalledPythonLibs() map[string]types.DistInfo {
	return inst.pythonLibs
}

// targetFor computes the install target directory for a package name,
// honoring the internal scope when a package is currently installing.
func (inst *Installer) targetFor(name string, internal bool) string {
	if internal {
		if top, ok := inst.parent(); ok {
			return filepath.Join(top.targetDir, types.ModulesDirname, name)
		}
	}
	return filepath.Join(inst.Dirs.Packages, name)
}

// FindPackage locates an installed package and returns its manifest.
// Fails with a CodeNotFound error when the package is absent; a
// present directory without a manifest is warned about and also
// reported as not found. A malformed manifest is fatal.
func (inst *Installer) FindPackage(name string, internal bool) (types.PackageManifest, error) {
	dirname := inst.targetFor(name, internal)
	info, err := os.Stat(dirname)
	if err != nil || !info.IsDir() {
		return types.PackageManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package %q is not installed", name))
	}

	manifestPath := filepath.Join(dirname, types.ManifestFilename)
	if linkTarget, ok := readLinkMarker(dirname); ok {
		manifestPath = filepath.Join(linkTarget, types.ManifestFilename)
	}
	if _, err := os.Stat(manifestPath); err != nil {
		log.Warn().Str("dir", dirname).Msgf("found package directory without %s", types.ManifestFilename)
		return types.PackageManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package %q is not installed", name))
	}

	manifest, err := inst.Manifests.Load(manifestPath)
	if err != nil {
		return types.PackageManifest{}, err
	}
	manifest.Directory = dirname
	return manifest, nil
}

// InstallDependenciesFor installs the native and python dependencies
// of a manifest. Dev dependencies are folded in when dev is set.
func (inst *Installer) InstallDependenciesFor(ctx context.Context, manifest types.PackageManifest, dev bool) error {
	deps := manifest.Dependencies
	if dev {
		deps = deps.Merged(manifest.DevDependencies)
	}
	if len(deps) > 0 {
		log.Info().Str("package", manifest.Identifier()).Bool("dev", dev).Msg("installing dependencies")
		if err := inst.InstallDependencies(ctx, deps, manifest.Directory); err != nil {
			return err
		}
	}

	pythonDeps := manifest.PythonDependencies
	if dev {
		pythonDeps = pythonDeps.Merged(manifest.DevPythonDependencies)
	}
	if len(pythonDeps) > 0 {
		log.Info().Str("package", manifest.Identifier()).Bool("dev", dev).Msg("installing python dependencies")
		if err := inst.InstallPythonDependencies(ctx, pythonDeps, nil); err != nil {
			return err
		}
	}
	return nil
}

// InstallDependencies installs one dependency set in declaration
// order. Already-present requirements are skipped (with a satisfied /
// unsatisfied note for registry selectors); the rest are acquired by
// source kind. The set fails fast on the first failing acquisition.
func (inst *Installer) InstallDependencies(ctx context.Context, deps types.DependencySet, currentDir string) error {
	var queue []types.Requirement
	for _, entry := range deps {
		req, err := ParseRequirement(entry.Spec, entry.Name, false)
		if err != nil {
			return err
		}
		existing, err := inst.FindPackage(req.Name, req.Internal)
		if err != nil {
			if errbuilder.CodeOf(err) != errbuilder.CodeNotFound {
				return err
			}
			queue = append(queue, req)
			continue
		}
		if req.Kind() == types.SourceRegistry && req.Selector != nil {
			if !req.Selector.Matches(existing.Version) {
				log.Warn().Msgf("dependency %q unsatisfied, have %q installed",
					req.Name+"@"+req.Selector.String(), existing.Identifier())
			} else {
				log.Debug().Msgf("skipping satisfied dependency %q, have %q installed",
					req.Name+"@"+req.Selector.String(), existing.Identifier())
			}
		} else {
			log.Debug().Msgf("skipping dependency %q from %s source, have %q installed",
				req.Name, req.Kind(), existing.Identifier())
		}
		if inst.Recursive {
			if err := inst.InstallDependenciesFor(ctx, existing, false); err != nil {
				return err
			}
		}
	}

	if len(queue) == 0 {
		return nil
	}
	labels := make([]string, len(queue))
	for i, req := range queue {
		labels[i] = req.String()
	}
	log.Info().Strs("requirements", labels).Msg("installing missing dependencies")

	for _, req := range queue {
		opts := DirInstallOptions{Internal: req.Internal, Pure: req.Pure, Registry: req.Registry}
		switch req.Kind() {
		case types.SourceGit:
			if _, err := inst.InstallFromGit(ctx, req.GitURL, req.Recursive, opts); err != nil {
				return err
			}
		case types.SourcePath:
			path := req.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(currentDir, path)
			}
			info, err := os.Stat(path)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeNotFound).
					WithMsg(fmt.Sprintf("dependency path %q does not exist", req.Path)).
					WithCause(err)
			}
			if info.IsDir() {
				opts.Develop = req.Link
				if _, err := inst.InstallFromDirectory(ctx, path, opts); err != nil {
					return err
				}
			} else if _, err := inst.InstallFromArchive(ctx, path, opts); err != nil {
				return err
			}
		default:
			selector := req.Selector
			if selector == nil {
				selector = MatchAnySelector()
			}
			if _, err := inst.InstallFromRegistry(ctx, req.Name, selector, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

// InstallFromDirectory installs a package from a source directory.
// This is the core state machine; registry and git acquisition both
// funnel into it.
func (inst *Installer) InstallFromDirectory(ctx context.Context, directory string, opts DirInstallOptions) (types.PackageManifest, error) {
	manifest, err := inst.Manifests.Load(filepath.Join(directory, types.ManifestFilename))
	if err != nil {
		return types.PackageManifest{}, err
	}
	if err := ValidateManifest(ctx, manifest); err != nil {
		return types.PackageManifest{}, err
	}

	if opts.Expect != nil && (manifest.Name != opts.Expect.Name || manifest.Version != opts.Expect.Version) {
		return manifest, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("identity mismatch: expected to install %s@%s but found %s in %q",
				opts.Expect.Name, opts.Expect.Version, manifest.Identifier(), directory))
	}

	targetDir := inst.targetFor(manifest.Name, opts.Internal)
	if top, ok := inst.parent(); ok && opts.Internal {
		log.Info().Str("package", manifest.Identifier()).Str("parent", top.manifest.Name).
			Msg("installing as internal dependency")
	} else {
		log.Info().Str("package", manifest.Identifier()).Msg("installing")
	}

	// A pre-existing target is a no-op without the upgrade flag; with
	// it, the old install is removed first.
	if _, err := os.Stat(targetDir); err == nil {
		if !inst.Upgrade {
			log.Info().Str("dir", targetDir).Msg("install directory already exists, specify --upgrade")
			return manifest, nil
		}
		if err := inst.UninstallDirectory(ctx, targetDir); err != nil {
			return manifest, err
		}
	}

	pop := inst.push(manifest, targetDir)
	defer pop()

	if err := inst.Lifecycle.Run(ctx, manifest, types.HookPreInstall, nil); err != nil {
		return manifest, err
	}

	// Dependencies first: nothing of this package is written until its
	// dependency closure is in place.
	if err := inst.InstallDependenciesFor(ctx, manifest, opts.Dev); err != nil {
		return manifest, err
	}

	ledger, err := inst.materialize(manifest, directory, targetDir, opts)
	if err != nil {
		return manifest, err
	}
	if opts.Move {
		manifest.Directory = targetDir
	}

	if !opts.Pure {
		scripts, err := inst.makeEntryScripts(manifest, targetDir)
		if err != nil {
			return manifest, err
		}
		ledger = append(ledger, scripts...)
	}

	if err := writeLedger(targetDir, ledger); err != nil {
		return manifest, err
	}

	if err := inst.Lifecycle.Run(ctx, manifest, types.HookPostInstall, nil); err != nil {
		// Files and ledger are already on disk. The partial install is
		// left in place; a later uninstall can clean it up via the
		// ledger.
		return manifest, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("post-install hook failed, package files remain at %q", targetDir)).
			WithCause(err)
	}
	return manifest, nil
}

// materialize writes the package's files into the target directory and
// returns the paths it created.
func (inst *Installer) materialize(manifest types.PackageManifest, directory string, targetDir string, opts DirInstallOptions) ([]string, error) {
	var ledger []string
	switch {
	case opts.Move:
		log.Info().Str("package", manifest.Identifier()).Str("dir", targetDir).Msg("moving into place")
		if err := os.MkdirAll(filepath.Dir(targetDir), 0o755); err != nil {
			return nil, installError("failed to prepare packages root", err)
		}
		// No fallback copy: the source is a disposable temp tree and a
		// failed rename must surface.
		if err := os.Rename(directory, targetDir); err != nil {
			return nil, installError("failed to move package into place", err)
		}
		ledger = append(ledger, targetDir)

	case opts.Develop:
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return nil, installError("failed to create install directory", err)
		}
		source, err := filepath.Abs(manifest.Directory)
		if err != nil {
			return nil, installError("failed to resolve source directory", err)
		}
		linkPath := filepath.Join(targetDir, types.LinkFilename)
		log.Info().Str("link", linkPath).Str("source", source).Msg("creating develop link")
		if err := os.WriteFile(linkPath, []byte(source+"\n"), 0o644); err != nil {
			return nil, installError("failed to write develop link", err)
		}
		ledger = append(ledger, linkPath)

	default:
		log.Info().Str("package", manifest.Identifier()).Str("dir", targetDir).Msg("copying files")
		files, err := WalkPackageFiles(manifest)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			dst := filepath.Join(targetDir, filepath.FromSlash(file.Rel))
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return nil, installError("failed to create install directory", err)
			}
			log.Debug().Str("file", file.Rel).Msg("copying")
			if err := copyFile(file.Source, dst); err != nil {
				return nil, installError(fmt.Sprintf("failed to copy %q", file.Rel), err)
			}
			ledger = append(ledger, dst)
		}
	}
	return ledger, nil
}

// makeEntryScripts generates entry-point wrappers for the manifest's
// declared binaries and returns every created path.
func (inst *Installer) makeEntryScripts(manifest types.PackageManifest, targetDir string) ([]string, error) {
	if len(manifest.Bin) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(manifest.Bin))
	for name := range manifest.Bin {
		names = append(names, name)
	}
	sort.Strings(names)

	var created []string
	for _, scriptName := range names {
		target := manifest.Bin[scriptName]
		if manifest.ResolveRoot != "" {
			target = filepath.Join(manifest.ResolveRoot, target)
		}
		targetFile, err := filepath.Abs(filepath.Join(targetDir, target))
		if err != nil {
			return nil, installError("failed to resolve entry script target", err)
		}
		for _, variant := range expandScriptName(scriptName, inst.RuntimeVersion) {
			log.Info().Str("script", variant).Str("target", targetFile).Msg("installing entry script")
			paths, err := inst.Scripts.MakeEntryScript(variant, targetFile, inst.Dirs.Reference)
			if err != nil {
				return nil, err
			}
			created = append(created, paths...)
		}
	}
	return created, nil
}

// expandScriptName expands the interpreter-version placeholder in a
// script name into up to three concrete names: unversioned, major, and
// major.minor.
func expandScriptName(name string, runtimeVersion string) []string {
	const placeholder = "${py}"
	if !strings.Contains(name, placeholder) {
		return []string{name}
	}
	variants := []string{strings.ReplaceAll(name, placeholder, "")}
	if runtimeVersion == "" {
		return variants
	}
	parts := strings.SplitN(runtimeVersion, ".", 3)
	variants = append(variants, strings.ReplaceAll(name, placeholder, parts[0]))
	if len(parts) > 1 {
		variants = append(variants, strings.ReplaceAll(name, placeholder, parts[0]+"."+parts[1]))
	}
	return variants
}

// InstallFromArchive extracts a distribution archive into a disposable
// temp directory and runs the directory install from there. The temp
// directory is removed regardless of outcome.
func (inst *Installer) InstallFromArchive(ctx context.Context, archive string, opts DirInstallOptions) (types.PackageManifest, error) {
	tmpDir, err := os.MkdirTemp("", filepath.Base(archive)+"_unpacked_*")
	if err != nil {
		return types.PackageManifest{}, installError("failed to create unpack directory", err)
	}
	defer func() {
		_ = forceRemoveTree(tmpDir)
	}()

	log.Info().Str("archive", archive).Msg("unpacking")
	if err := inst.Archives.Extract(archive, tmpDir); err != nil {
		return types.PackageManifest{}, err
	}
	return inst.InstallFromDirectory(ctx, tmpDir, opts)
}

// InstallFromRegistry resolves a name and selector against the
// configured registries in preference order and installs the first
// match.
func (inst *Installer) InstallFromRegistry(ctx context.Context, name string, selector types.Selector, opts DirInstallOptions) (types.PackageInfo, error) {
	if existing, err := inst.FindPackage(name, opts.Internal); err == nil {
		if !selector.Matches(existing.Version) {
			log.Warn().Msgf("dependency %q unsatisfied, have %q installed",
				name+"@"+selector.String(), existing.Identifier())
		}
		if !inst.Upgrade {
			log.Info().Msgf("package %q already installed, specify --upgrade", existing.Identifier())
			return types.PackageInfo{Name: existing.Name, Version: existing.Version}, nil
		}
	} else if errbuilder.CodeOf(err) != errbuilder.CodeNotFound {
		return types.PackageInfo{}, err
	}

	log.Info().Msgf("finding package matching %s@%s", name, selector)
	var info types.PackageInfo
	var source ports.RegistryPort
	for _, registry := range inst.registriesFor(opts.Registry) {
		log.Debug().Str("registry", registry.Name()).Str("url", registry.BaseURL()).Msg("checking registry")
		result, err := registry.FindPackage(ctx, name, selector)
		if err != nil {
			if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
				continue
			}
			return types.PackageInfo{}, err
		}
		info = result
		source = registry
		log.Info().Str("registry", registry.Name()).Msgf("found %s@%s", info.Name, info.Version)
		break
	}
	if source == nil {
		return types.PackageInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package %s@%s could not be located", name, selector))
	}

	log.Info().Msgf("downloading %s@%s", info.Name, info.Version)
	archive, err := inst.downloadArchive(ctx, source, info)
	if err != nil {
		return info, err
	}
	defer os.Remove(archive)

	opts.Expect = &info
	if _, err := inst.InstallFromArchive(ctx, archive, opts); err != nil {
		return info, err
	}
	return info, nil
}

func (inst *Installer) downloadArchive(ctx context.Context, source ports.RegistryPort, info types.PackageInfo) (string, error) {
	stream, filename, err := source.Download(ctx, info.Name, info.Version)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	tmp, err := os.CreateTemp("", "*_"+filepath.Base(filename))
	if err != nil {
		return "", installError("failed to create download file", err)
	}
	if _, err := io.Copy(tmp, stream); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("download failed for %s@%s", info.Name, info.Version)).
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", installError("failed to finish download", err)
	}
	return tmp.Name(), nil
}

func (inst *Installer) registriesFor(name string) []ports.RegistryPort {
	if name == "" {
		return inst.Registries
	}
	for _, registry := range inst.Registries {
		if registry.Name() == name {
			return []ports.RegistryPort{registry}
		}
	}
	return nil
}

// InstallFromGit clones a repository into a disposable path beneath
// the packages root and installs it in move mode, so the clone becomes
// the live install without a redundant full-tree copy. The temp clone
// directory is removed afterward regardless of outcome.
func (inst *Installer) InstallFromGit(ctx context.Context, url string, recursive bool, opts DirInstallOptions) (types.PackageInfo, error) {
	cloneURL, ref := SplitGitRef(url)
	if err := os.MkdirAll(inst.Dirs.Packages, 0o755); err != nil {
		return types.PackageInfo{}, installError("failed to prepare packages root", err)
	}
	dest, err := os.MkdirTemp(inst.Dirs.Packages, ".tmp-clone-*")
	if err != nil {
		return types.PackageInfo{}, installError("failed to create clone directory", err)
	}
	defer func() {
		_ = forceRemoveTree(dest)
	}()

	log.Info().Str("url", cloneURL).Str("ref", ref).Msg("cloning")
	if err := inst.VCS.Clone(ctx, cloneURL, ref, dest, recursive); err != nil {
		return types.PackageInfo{}, err
	}

	opts.Move = true
	manifest, err := inst.InstallFromDirectory(ctx, dest, opts)
	if err != nil {
		return types.PackageInfo{}, err
	}
	return types.PackageInfo{Name: manifest.Name, Version: manifest.Version}, nil
}

// InstallPythonDependencies delegates non-native dependencies to the
// bridged installer and caches each dependency's installed
// distribution metadata for later manifest saving.
func (inst *Installer) InstallPythonDependencies(ctx context.Context, deps types.DependencySet, extraArgs []string) error {
	modules := make([]string, 0, len(deps))
	for _, entry := range deps {
		modules = append(modules, entry.Name+entry.Spec)
	}
	if len(modules) == 0 && len(extraArgs) == 0 {
		return nil
	}

	req := types.BridgeRequest{
		Modules:         modules,
		Dirs:            inst.Dirs,
		Location:        inst.Location,
		IgnoreInstalled: inst.IgnoreInstalled,
		Upgrade:         inst.Upgrade,
		Verbose:         inst.Verbose,
		Args:            extraArgs,
	}
	log.Info().Strs("modules", modules).Msg("installing python dependencies via bridge")
	if err := inst.Bridge.Install(ctx, req); err != nil {
		return err
	}

	for _, entry := range deps {
		info, ok := inst.Bridge.DistInfo(entry.Name, inst.Dirs)
		if !ok {
			log.Warn().Str("module", entry.Name).Msg("missing distribution metadata after bridge install")
			continue
		}
		inst.pythonLibs[entry.Name] = info
	}
	return nil
}

// RelinkPipScripts re-exposes executables from the bridge bin
// directory as wrapper scripts in the package bin directory. Local
// installs only; other scopes already share a bin directory with the
// bridge.
func (inst *Installer) RelinkPipScripts() error {
	if inst.Location != types.LocationLocal || inst.Dirs.PipBin == "" {
		return nil
	}
	entries, err := os.ReadDir(inst.Dirs.PipBin)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		target, err := filepath.Abs(filepath.Join(inst.Dirs.PipBin, entry.Name()))
		if err != nil {
			return installError("failed to resolve bridge script", err)
		}
		log.Info().Str("script", entry.Name()).Str("target", target).Msg("relinking bridge script")
		if _, err := inst.Scripts.MakeWrapper(entry.Name(), []string{target}); err != nil {
			return err
		}
	}
	return nil
}

func installError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}
