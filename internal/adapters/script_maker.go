package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/ports"
	"modpm/internal/types"
)

const defaultRuntimeCommand = "modpm-run"

// ScriptMakerAdapter writes executable shell wrappers into a bin
// directory. Wrappers prepend the configured search paths so bridged
// executables and libraries are found at run time.
type ScriptMakerAdapter struct {
	Directory string
	Location  types.InstallLocation

	// Path and PythonPath are prepended to the respective environment
	// variables inside every generated wrapper.
	Path       []string
	PythonPath []string

	// Runtime is the module-runtime command entry scripts invoke.
	Runtime string
}

func NewScriptMakerAdapter(directory string, location types.InstallLocation) *ScriptMakerAdapter {
	return &ScriptMakerAdapter{
		Directory: directory,
		Location:  location,
		Runtime:   defaultRuntimeCommand,
	}
}

// MakeWrapper creates a wrapper script that executes targetCommand,
// forwarding all arguments.
func (a *ScriptMakerAdapter) MakeWrapper(scriptName string, targetCommand []string) ([]string, error) {
	if len(targetCommand) == 0 || !filepath.IsAbs(targetCommand[0]) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("wrapper target must be an absolute path")
	}
	quoted := make([]string, len(targetCommand))
	for i, arg := range targetCommand {
		quoted[i] = shellQuote(arg)
	}
	body := a.preamble() + "exec " + strings.Join(quoted, " ") + " \"$@\"\n"
	return a.write(scriptName, body)
}

// MakeEntryScript creates a wrapper that runs targetFile through the
// module runtime.
func (a *ScriptMakerAdapter) MakeEntryScript(scriptName string, targetFile string, referenceDir string) ([]string, error) {
	runtime := a.Runtime
	if runtime == "" {
		runtime = defaultRuntimeCommand
	}
	body := a.preamble() +
		"export MODPM_REFERENCE_DIR=" + shellQuote(referenceDir) + "\n" +
		"export MODPM_LOCATION=" + shellQuote(string(a.Location)) + "\n" +
		"exec " + shellQuote(runtime) + " " + shellQuote(targetFile) + " \"$@\"\n"
	return a.write(scriptName, body)
}

func (a *ScriptMakerAdapter) preamble() string {
	body := "#!/bin/sh\n"
	if len(a.Path) > 0 {
		body += fmt.Sprintf("export PATH=%s:\"$PATH\"\n", shellQuote(joinAbs(a.Path)))
	}
	if len(a.PythonPath) > 0 {
		body += fmt.Sprintf("export PYTHONPATH=%s${PYTHONPATH:+:$PYTHONPATH}\n", shellQuote(joinAbs(a.PythonPath)))
	}
	return body
}

func (a *ScriptMakerAdapter) write(scriptName string, body string) ([]string, error) {
	if err := os.MkdirAll(a.Directory, 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create bin directory").
			WithCause(err)
	}
	path := filepath.Join(a.Directory, scriptName)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write script %q", scriptName)).
			WithCause(err)
	}
	return []string{path}, nil
}

func joinAbs(paths []string) string {
	abs := make([]string, len(paths))
	for i, path := range paths {
		resolved, err := filepath.Abs(path)
		if err != nil {
			resolved = path
		}
		abs[i] = resolved
	}
	return strings.Join(abs, ":")
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

var _ ports.ScriptPort = (*ScriptMakerAdapter)(nil)
