package ports

import "context"

// VCSPort clones a repository into dest. A non-zero client exit status
// surfaces as a CodeInternal "clone failed" error.
type VCSPort interface {
	Clone(ctx context.Context, url string, ref string, dest string, recursive bool) error
}
