package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDependencySetPreservesDeclarationOrder(t *testing.T) {
	body := `dependencies:
  zeta: ^1.0.0
  alpha: ./alpha
  mid: git+https://example.com/mid.git
`
	var manifest PackageManifest
	require.NoError(t, yaml.Unmarshal([]byte(body), &manifest))

	want := DependencySet{
		{Name: "zeta", Spec: "^1.0.0"},
		{Name: "alpha", Spec: "./alpha"},
		{Name: "mid", Spec: "git+https://example.com/mid.git"},
	}
	if diff := cmp.Diff(want, manifest.Dependencies); diff != "" {
		t.Fatalf("dependency order mismatch (-want +got):\n%s", diff)
	}
}

func TestDependencySetRejectsNonMapping(t *testing.T) {
	var set DependencySet
	err := yaml.Unmarshal([]byte("- zeta\n- alpha\n"), &set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency map expected")
}

func TestDependencySetRoundTrip(t *testing.T) {
	set := DependencySet{
		{Name: "b", Spec: "^2.0.0"},
		{Name: "a", Spec: "^1.0.0"},
	}
	data, err := yaml.Marshal(set)
	require.NoError(t, err)

	var decoded DependencySet
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, set, decoded)
}

func TestDependencySetMerged(t *testing.T) {
	base := DependencySet{
		{Name: "a", Spec: "^1.0.0"},
		{Name: "b", Spec: "^1.0.0"},
	}
	dev := DependencySet{
		{Name: "b", Spec: "^2.0.0"},
		{Name: "c", Spec: "./c"},
	}
	merged := base.Merged(dev)

	want := DependencySet{
		{Name: "a", Spec: "^1.0.0"},
		{Name: "b", Spec: "^2.0.0"},
		{Name: "c", Spec: "./c"},
	}
	assert.Equal(t, want, merged)
	// The receiver is untouched.
	assert.Equal(t, "^1.0.0", base[1].Spec)
}

func TestManifestIdentifier(t *testing.T) {
	manifest := PackageManifest{Name: "demo", Version: "1.2.0"}
	assert.Equal(t, "demo@1.2.0", manifest.Identifier())
}

func TestRequirementKind(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		want SourceKind
	}{
		{name: "git", req: Requirement{GitURL: "https://example.com/x.git"}, want: SourceGit},
		{name: "path", req: Requirement{Path: "./x"}, want: SourcePath},
		{name: "registry", req: Requirement{Name: "x"}, want: SourceRegistry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Kind())
		})
	}
}
