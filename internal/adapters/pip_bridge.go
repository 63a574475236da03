package adapters

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/rs/zerolog/log"

	"modpm/internal/ports"
	"modpm/internal/shared"
	"modpm/internal/types"
)

// PipBridgeAdapter delegates python dependencies to pip, running it
// through the configured interpreter. Installs into local and global
// locations are redirected to the managed pip prefix; root installs use
// pip's own system prefix.
type PipBridgeAdapter struct {
	// Python is the interpreter command, "python3" by default.
	Python string

	// UseTargetOption installs with --target instead of --prefix, which
	// skips script generation but works without a writable prefix.
	UseTargetOption bool
}

func NewPipBridgeAdapter() *PipBridgeAdapter {
	return &PipBridgeAdapter{Python: "python3"}
}

func (a *PipBridgeAdapter) Install(ctx context.Context, req types.BridgeRequest) error {
	if len(req.Modules) == 0 {
		return nil
	}
	if err := validateSpecifiers(req.Modules); err != nil {
		return err
	}

	args, err := a.buildArgs(req)
	if err != nil {
		return err
	}

	restore := scopedEnv(req.Dirs)
	defer restore()

	python := a.Python
	if python == "" {
		python = "python3"
	}
	log.Info().Strs("modules", req.Modules).Str("location", string(req.Location)).Msg("installing python dependencies")

	cmd := exec.CommandContext(ctx, python, args...)
	if req.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return bridgeError(req.Modules, err)
		}
		return nil
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return bridgeError(req.Modules, shared.CommandError(output, err))
	}
	return nil
}

func (a *PipBridgeAdapter) buildArgs(req types.BridgeRequest) ([]string, error) {
	args := []string{"-m", "pip", "install"}
	switch req.Location {
	case types.LocationRoot:
		// pip manages its own system prefix.
	default:
		if a.UseTargetOption {
			if req.Dirs.PipLib == "" {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("no pip library directory for this install location")
			}
			args = append(args, "--target", req.Dirs.PipLib)
		} else {
			if req.Dirs.PipPrefix == "" {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("no pip prefix directory for this install location")
			}
			args = append(args, "--prefix", req.Dirs.PipPrefix)
		}
	}
	if req.IgnoreInstalled {
		args = append(args, "--ignore-installed")
	}
	if req.Upgrade {
		args = append(args, "--upgrade")
	}
	if req.Verbose {
		args = append(args, "--verbose")
	}
	args = append(args, req.Args...)
	args = append(args, req.Modules...)
	return args, nil
}

// validateSpecifiers rejects malformed version specifiers before pip
// ever sees them, so a typo in the manifest fails fast with a clear
// message instead of a pip stack trace.
func validateSpecifiers(modules []string) error {
	for _, module := range modules {
		idx := strings.IndexAny(module, "<>=!~")
		if idx <= 0 {
			continue
		}
		spec := module[idx:]
		if _, err := pep440.NewSpecifiers(spec); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid python version specifier %q for %q", spec, module[:idx])).
				WithCause(err)
		}
	}
	return nil
}

// scopedEnv prepends the managed pip directories to PATH and PYTHONPATH
// and returns a closure that restores the previous values. The
// mutation only lives for the duration of one bridge invocation.
func scopedEnv(dirs types.Directories) func() {
	prevPath, hadPath := os.LookupEnv("PATH")
	prevPythonPath, hadPythonPath := os.LookupEnv("PYTHONPATH")

	if dirs.PipBin != "" {
		os.Setenv("PATH", prepend(dirs.PipBin, prevPath))
	}
	if dirs.PipLib != "" {
		os.Setenv("PYTHONPATH", prepend(dirs.PipLib, prevPythonPath))
	}

	return func() {
		restoreEnv("PATH", prevPath, hadPath)
		restoreEnv("PYTHONPATH", prevPythonPath, hadPythonPath)
	}
}

func prepend(dir string, existing string) string {
	if existing == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + existing
}

func restoreEnv(key string, value string, had bool) {
	if had {
		os.Setenv(key, value)
	} else {
		os.Unsetenv(key)
	}
}

func bridgeError(modules []string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("pip install failed for %s", strings.Join(modules, ", "))).
		WithCause(cause)
}

// DistInfo scans the managed pip library directory for the .dist-info
// record of an installed distribution and reads its name, version and
// importable top-level modules.
func (a *PipBridgeAdapter) DistInfo(name string, dirs types.Directories) (types.DistInfo, bool) {
	if dirs.PipLib == "" {
		return types.DistInfo{}, false
	}
	normalized := strings.ReplaceAll(shared.NormalizePipName(name), "-", "_")

	entries, err := os.ReadDir(dirs.PipLib)
	if err != nil {
		return types.DistInfo{}, false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
			continue
		}
		prefix := strings.ToLower(entry.Name())
		if !strings.HasPrefix(prefix, normalized+"-") {
			continue
		}
		infoDir := filepath.Join(dirs.PipLib, entry.Name())
		info, ok := readDistInfo(infoDir)
		if !ok {
			continue
		}
		info.Location = dirs.PipLib
		return info, true
	}
	return types.DistInfo{}, false
}

func readDistInfo(infoDir string) (types.DistInfo, bool) {
	metadata, err := os.Open(filepath.Join(infoDir, "METADATA"))
	if err != nil {
		return types.DistInfo{}, false
	}
	defer metadata.Close()

	var info types.DistInfo
	scanner := bufio.NewScanner(metadata)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if value, ok := strings.CutPrefix(line, "Name: "); ok {
			info.Name = strings.TrimSpace(value)
		}
		if value, ok := strings.CutPrefix(line, "Version: "); ok {
			info.Version = strings.TrimSpace(value)
		}
	}
	if info.Name == "" || info.Version == "" {
		return types.DistInfo{}, false
	}

	if data, err := os.ReadFile(filepath.Join(infoDir, "top_level.txt")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				info.TopLevel = append(info.TopLevel, line)
			}
		}
	}
	return info, true
}

var _ ports.BridgePort = (*PipBridgeAdapter)(nil)
