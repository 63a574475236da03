package ports

import (
	"context"

	"modpm/internal/types"
)

// LifecyclePort runs a named hook script declared by a manifest. A
// missing hook is a no-op; a failing hook returns an error whose
// message carries the "hook failed" marker.
type LifecyclePort interface {
	Run(ctx context.Context, manifest types.PackageManifest, hook types.Hook, args []string) error
}
