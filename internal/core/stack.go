package core

import "modpm/internal/types"

// stackEntry is one frame of the currently-installing stack: the
// package being installed and the directory it installs into. The
// stack resolves internal dependencies into the nearest enclosing
// package's nested scope.
type stackEntry struct {
	manifest  types.PackageManifest
	targetDir string
}

// push adds a frame and returns the matching pop. The caller defers
// the pop so the frame is released on every exit path.
func (inst *Installer) push(manifest types.PackageManifest, targetDir string) func() {
	inst.stack = append(inst.stack, stackEntry{manifest: manifest, targetDir: targetDir})
	return func() {
		inst.stack = inst.stack[:len(inst.stack)-1]
	}
}

func (inst *Installer) parent() (stackEntry, bool) {
	if len(inst.stack) == 0 {
		return stackEntry{}, false
	}
	return inst.stack[len(inst.stack)-1], true
}
