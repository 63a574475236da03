package ports

import (
	"context"
	"io"

	"modpm/internal/types"
)

// RegistryPort is a client for one package registry. FindPackage fails
// with a CodeNotFound error when no version satisfies the selector.
type RegistryPort interface {
	Name() string
	BaseURL() string
	FindPackage(ctx context.Context, name string, selector types.Selector) (types.PackageInfo, error)

	// Download streams the archive for a concrete version. It returns
	// the body and the archive filename; the caller closes the body.
	Download(ctx context.Context, name string, version string) (io.ReadCloser, string, error)
}
