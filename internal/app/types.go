package app

import "modpm/internal/types"

type InstallRequest struct {
	// Specs are textual requirement specifiers. Empty means "install
	// the dependencies of the manifest in the current directory".
	Specs []string

	Global bool
	Root   bool

	Upgrade         bool
	Develop         bool
	Dev             bool
	Recursive       bool
	Internal        bool
	Pure            bool
	IgnoreInstalled bool
	Verbose         bool

	// RuntimeVersion expands versioned entry-script names.
	RuntimeVersion string

	// PipArgs are passed through to the bridged python installer.
	PipArgs []string
}

type InstallResult struct {
	Installed []types.PackageInfo
	Location  types.InstallLocation
}

type UninstallRequest struct {
	Name   string
	Global bool
	Root   bool
	Force  bool
}

type UninstallResult struct {
	Name string
}

type DistRequest struct {
	Directory string
	OutputDir string
}

type DistResult struct {
	ArchivePath string
}
