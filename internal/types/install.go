package types

// PackageInfo identifies a concrete package version, as reported by a
// registry lookup or a completed install.
type PackageInfo struct {
	Name    string
	Version string
}

// Directories is the deterministic directory set derived from an
// InstallLocation: the packages root, the binaries root, and the
// prefix/library/binary roots used by the bridged python installer.
// The pip fields are empty for root installs, where the external
// installer manages its own system prefix.
type Directories struct {
	Packages  string
	Bin       string
	Reference string
	PipPrefix string
	PipBin    string
	PipLib    string
}

// PackageFile is one file selected for materialization: the absolute
// source path and the package-relative path it mirrors to.
type PackageFile struct {
	Source string
	Rel    string
}

// DistInfo is the installed distribution metadata of a bridged python
// dependency, captured after a successful bridge install.
type DistInfo struct {
	Name     string
	Version  string
	Location string
	TopLevel []string
}

// BridgeRequest describes one invocation of the external python
// package installer.
type BridgeRequest struct {
	Modules  []string
	Dirs     Directories
	Location InstallLocation

	IgnoreInstalled bool
	Upgrade         bool
	Verbose         bool
	Args            []string
}
