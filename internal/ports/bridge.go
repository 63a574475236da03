package ports

import (
	"context"

	"modpm/internal/types"
)

// BridgePort delegates non-native dependencies to the external python
// package installer.
type BridgePort interface {
	Install(ctx context.Context, req types.BridgeRequest) error

	// DistInfo looks up the installed distribution metadata for a
	// previously bridged dependency.
	DistInfo(name string, dirs types.Directories) (types.DistInfo, bool)
}
