package core

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modpm/internal/types"
)

// ResolveLocation maps the --global/--root flag pair to an install
// location. Selecting global inside a detected isolated interpreter
// environment is silently upgraded to root; the two pip scopes would
// otherwise fight over the same prefix.
func ResolveLocation(globalFlag bool, rootFlag bool) (types.InstallLocation, error) {
	if globalFlag && rootFlag {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--global and --root are mutually exclusive")
	}
	switch {
	case rootFlag:
		return types.LocationRoot, nil
	case globalFlag:
		if inVirtualEnv() {
			log.Info().Msg("virtual environment detected, upgrading global install to root")
			return types.LocationRoot, nil
		}
		return types.LocationGlobal, nil
	default:
		return types.LocationLocal, nil
	}
}

func inVirtualEnv() bool {
	return os.Getenv("VIRTUAL_ENV") != ""
}

// DirectoriesFor derives the directory set for an install location.
func DirectoriesFor(location types.InstallLocation) (types.Directories, error) {
	switch location {
	case types.LocationLocal:
		return localDirectories(types.ModulesDirname), nil
	case types.LocationGlobal:
		home, err := os.UserHomeDir()
		if err != nil {
			return types.Directories{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to determine home directory").
				WithCause(err)
		}
		base := filepath.Join(home, ".modpm")
		return types.Directories{
			Packages:  filepath.Join(base, "modules"),
			Bin:       filepath.Join(base, "bin"),
			Reference: base,
			PipPrefix: filepath.Join(base, "pip"),
			PipBin:    filepath.Join(base, "pip", "bin"),
			PipLib:    filepath.Join(base, "pip", "lib"),
		}, nil
	case types.LocationRoot:
		// Root installs share the system prefix; the bridged installer
		// manages its own paths there.
		return types.Directories{
			Packages:  filepath.Join("/usr", "local", "lib", "modpm"),
			Bin:       filepath.Join("/usr", "local", "bin"),
			Reference: filepath.Join("/usr", "local", "lib"),
		}, nil
	default:
		return types.Directories{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported install location")
	}
}

func localDirectories(packagesRoot string) types.Directories {
	pip := filepath.Join(packagesRoot, ".pip")
	return types.Directories{
		Packages:  packagesRoot,
		Bin:       filepath.Join(packagesRoot, ".bin"),
		Reference: filepath.Dir(packagesRoot),
		PipPrefix: pip,
		PipBin:    filepath.Join(pip, "bin"),
		PipLib:    filepath.Join(pip, "lib"),
	}
}
