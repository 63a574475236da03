package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modpm/internal/ports"
	"modpm/internal/shared"
	"modpm/internal/types"
)

// LifecycleRunnerAdapter executes hook scripts declared under the
// manifest's scripts map. Scripts run with the package directory as
// working directory.
type LifecycleRunnerAdapter struct{}

func NewLifecycleRunnerAdapter() LifecycleRunnerAdapter {
	return LifecycleRunnerAdapter{}
}

func (a LifecycleRunnerAdapter) Run(ctx context.Context, manifest types.PackageManifest, hook types.Hook, args []string) error {
	script, ok := manifest.Scripts[string(hook)]
	if !ok {
		return nil
	}
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(manifest.Directory, script)
	}
	log.Info().Str("package", manifest.Identifier()).Str("hook", string(hook)).Msg("running hook")

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = manifest.Directory
	cmd.Env = append(os.Environ(),
		"MODPM_HOOK="+string(hook),
		"MODPM_PACKAGE="+manifest.Name,
		"MODPM_PACKAGE_VERSION="+manifest.Version,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s hook failed for %q", hook, manifest.Identifier())).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.LifecyclePort = LifecycleRunnerAdapter{}
