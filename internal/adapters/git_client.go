package adapters

import (
	"context"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/ports"
	"modpm/internal/shared"
)

type GitClientAdapter struct{}

func NewGitClientAdapter() GitClientAdapter {
	return GitClientAdapter{}
}

func (a GitClientAdapter) Clone(ctx context.Context, url string, ref string, dest string, recursive bool) error {
	args := []string{"clone", url, dest}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	if recursive {
		args = append(args, "--recurse-submodules")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("git clone failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.VCSPort = GitClientAdapter{}
