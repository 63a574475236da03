package types

type SourceKind string

const (
	SourceRegistry SourceKind = "registry"
	SourceGit      SourceKind = "git"
	SourcePath     SourceKind = "path"
)

type InstallLocation string

const (
	LocationLocal  InstallLocation = "local"
	LocationGlobal InstallLocation = "global"
	LocationRoot   InstallLocation = "root"
)

type Hook string

const (
	HookPreInstall   Hook = "pre-install"
	HookPostInstall  Hook = "post-install"
	HookPreUninstall Hook = "pre-uninstall"
	HookPreDist      Hook = "pre-dist"
	HookPostDist     Hook = "post-dist"
)
