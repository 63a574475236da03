package core

import (
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/types"
)

// semverSelector backs the engine's opaque version predicate with a
// semantic-version constraint set (^, ~, comparison and range syntax).
type semverSelector struct {
	raw        string
	constraint *semver.Constraints
}

// ParseSelector parses a version selector expression into a predicate.
func ParseSelector(expr string) (types.Selector, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || trimmed == "*" {
		return anySelector{}, nil
	}
	constraint, err := semver.NewConstraint(trimmed)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid version selector %q", expr)).
			WithCause(err)
	}
	return semverSelector{raw: trimmed, constraint: constraint}, nil
}

// MatchAnySelector returns a selector satisfied by every version. Used
// for bare-name installs where no version was requested.
func MatchAnySelector() types.Selector {
	return anySelector{}
}

func (s semverSelector) Matches(version string) bool {
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return s.constraint.Check(parsed)
}

func (s semverSelector) String() string {
	return s.raw
}

type anySelector struct{}

func (anySelector) Matches(string) bool { return true }
func (anySelector) String() string      { return "*" }
