package types

import "strings"

// Selector is an opaque predicate over version strings. The selector
// grammar itself is not part of the engine; see core.ParseSelector.
type Selector interface {
	Matches(version string) bool
	String() string
}

// Requirement is a resolved dependency specification with exactly one
// active source kind: a registry selector, a git URL, or a filesystem
// path. Parsed once from a textual specifier and immutable thereafter.
type Requirement struct {
	Name     string
	Selector Selector
	GitURL   string
	Path     string

	// Registry pins resolution to a named registry. Only valid for
	// selector-sourced requirements.
	Registry string

	Pure      bool
	Internal  bool
	Link      bool
	Optional  bool
	Recursive bool
}

// Kind reports which source kind is active.
func (r Requirement) Kind() SourceKind {
	switch {
	case r.GitURL != "":
		return SourceGit
	case r.Path != "":
		return SourcePath
	default:
		return SourceRegistry
	}
}

func (r Requirement) String() string {
	var parts []string
	if r.Pure {
		parts = append(parts, "--pure")
	}
	if r.Internal {
		parts = append(parts, "--internal")
	}
	if r.Link {
		parts = append(parts, "--link")
	}
	if r.Optional {
		parts = append(parts, "--optional")
	}
	if r.Recursive {
		parts = append(parts, "--recursive")
	}
	if r.Registry != "" {
		parts = append(parts, "--registry="+r.Registry)
	}
	name := r.Name
	switch r.Kind() {
	case SourceGit:
		name += "@git+" + r.GitURL
	case SourcePath:
		if name != "" {
			name += "@"
		}
		name += r.Path
	default:
		if r.Selector != nil {
			name += "@" + r.Selector.String()
		}
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}
