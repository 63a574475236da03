package app

import (
	"modpm/internal/adapters"
	"modpm/internal/ports"
	"modpm/internal/types"
)

type Service struct {
	Manifests  ports.ManifestPort
	Lifecycle  ports.LifecyclePort
	VCS        ports.VCSPort
	Bridge     ports.BridgePort
	Archives   ports.ArchivePort
	Registries []ports.RegistryPort

	// Scripts builds the wrapper-script writer for a resolved directory
	// set; the bin directory is not known until the location is.
	Scripts func(dirs types.Directories, location types.InstallLocation) ports.ScriptPort
}

func NewService(registries []ports.RegistryPort) Service {
	return Service{
		Manifests:  adapters.NewManifestFileAdapter(),
		Lifecycle:  adapters.NewLifecycleRunnerAdapter(),
		VCS:        adapters.NewGitClientAdapter(),
		Bridge:     adapters.NewPipBridgeAdapter(),
		Archives:   adapters.NewArchiveAdapter(),
		Registries: registries,
		Scripts:    newScriptMaker,
	}
}

func newScriptMaker(dirs types.Directories, location types.InstallLocation) ports.ScriptPort {
	maker := adapters.NewScriptMakerAdapter(dirs.Bin, location)
	for _, dir := range []string{dirs.Bin, dirs.PipBin} {
		if dir != "" {
			maker.Path = append(maker.Path, dir)
		}
	}
	if dirs.PipLib != "" {
		maker.PythonPath = []string{dirs.PipLib}
	}
	return maker
}
