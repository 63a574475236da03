package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/core"
)

func (s Service) Uninstall(ctx context.Context, req UninstallRequest) (UninstallResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return UninstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name is required")
	}

	location, err := core.ResolveLocation(req.Global, req.Root)
	if err != nil {
		return UninstallResult{}, err
	}
	dirs, err := core.DirectoriesFor(location)
	if err != nil {
		return UninstallResult{}, err
	}

	installer := core.NewInstaller(core.Collaborators{
		Manifests: s.Manifests,
		Lifecycle: s.Lifecycle,
		Scripts:   s.Scripts(dirs, location),
		VCS:       s.VCS,
		Bridge:    s.Bridge,
		Archives:  s.Archives,
	}, core.Options{
		Location: location,
		Dirs:     dirs,
		Force:    req.Force,
	})

	if err := installer.Uninstall(ctx, name); err != nil {
		return UninstallResult{}, err
	}
	return UninstallResult{Name: name}, nil
}
