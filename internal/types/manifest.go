package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known file and directory names inside an installed package tree.
const (
	ManifestFilename = "module.yaml"
	LinkFilename     = ".modpm-link"
	LedgerFilename   = "installed-files.txt"
	ModulesDirname   = "modpm_modules"
	IgnoreFilename   = ".modpmignore"
)

// DependencyEntry is a single name -> requirement-spec pair from a
// manifest dependency map.
type DependencyEntry struct {
	Name string
	Spec string
}

// DependencySet is a dependency map that preserves declaration order.
// Requirements are installed in the order they appear in the manifest,
// so a plain Go map is not enough here.
type DependencySet []DependencyEntry

func (d *DependencySet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: dependency map expected", node.Line)
	}
	out := make(DependencySet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, spec string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return err
		}
		out = append(out, DependencyEntry{Name: name, Spec: spec})
	}
	*d = out
	return nil
}

func (d DependencySet) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range d {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Spec},
		)
	}
	return node, nil
}

// Merged returns the receiver with *other* appended; entries in *other*
// replace earlier entries of the same name. Used to fold dev
// dependencies into the regular set.
func (d DependencySet) Merged(other DependencySet) DependencySet {
	out := append(DependencySet(nil), d...)
	for _, entry := range other {
		replaced := false
		for i := range out {
			if out[i].Name == entry.Name {
				out[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, entry)
		}
	}
	return out
}

// PackageManifest is the parsed package descriptor. It is immutable
// once loaded; one instance per package directory per operation.
type PackageManifest struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description,omitempty"`
	License     string            `yaml:"license,omitempty"`
	Bin         map[string]string `yaml:"bin,omitempty"`
	Scripts     map[string]string `yaml:"scripts,omitempty"`

	Dependencies          DependencySet `yaml:"dependencies,omitempty"`
	DevDependencies       DependencySet `yaml:"dev_dependencies,omitempty"`
	PythonDependencies    DependencySet `yaml:"python_dependencies,omitempty"`
	DevPythonDependencies DependencySet `yaml:"dev_python_dependencies,omitempty"`

	IncludeFiles []string `yaml:"include_files,omitempty"`
	ExcludeFiles []string `yaml:"exclude_files,omitempty"`
	ResolveRoot  string   `yaml:"resolve_root,omitempty"`

	// Directory is the source directory the manifest was loaded from.
	Directory string `yaml:"-"`
}

func (m PackageManifest) Identifier() string {
	return fmt.Sprintf("%s@%s", m.Name, m.Version)
}
