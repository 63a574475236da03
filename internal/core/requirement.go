package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"modpm/internal/types"
)

var requirementFlags = map[string]struct{}{
	"pure":      {},
	"internal":  {},
	"link":      {},
	"optional":  {},
	"recursive": {},
}

var requirementOptions = map[string]struct{}{
	"registry": {},
}

// ParseRequirement parses a textual dependency specifier into a
// Requirement. A specifier is an optional run of flags followed by a
// single source: "name@selector", "git+<url>", or a filesystem path.
// When expectName is false the name comes from the enclosing manifest
// key and the source must not carry one.
func ParseRequirement(line string, name string, expectName bool) (types.Requirement, error) {
	original := strings.TrimSpace(line)
	tokens := strings.Fields(original)
	if len(tokens) == 0 {
		return types.Requirement{}, invalidRequirement(original, "empty specifier")
	}

	req := types.Requirement{Name: name}
	for len(tokens) > 1 && strings.HasPrefix(tokens[0], "--") {
		flag, value, hasValue := strings.Cut(strings.TrimPrefix(tokens[0], "--"), "=")
		if hasValue {
			if _, ok := requirementOptions[flag]; !ok {
				return types.Requirement{}, invalidRequirement(original, fmt.Sprintf("invalid option %q", flag))
			}
			req.Registry = value
		} else {
			if _, ok := requirementFlags[flag]; !ok {
				return types.Requirement{}, invalidRequirement(original, fmt.Sprintf("invalid flag %q", flag))
			}
			switch flag {
			case "pure":
				req.Pure = true
			case "internal":
				req.Internal = true
			case "link":
				req.Link = true
			case "optional":
				req.Optional = true
			case "recursive":
				req.Recursive = true
			}
		}
		tokens = tokens[1:]
	}
	if len(tokens) != 1 {
		return types.Requirement{}, invalidRequirement(original, "expected a single source")
	}
	source := tokens[0]

	if expectName && strings.Contains(source, "@") && !strings.HasPrefix(source, "git+") {
		left, right, _ := strings.Cut(source, "@")
		req.Name = left
		source = right
	}

	switch {
	case strings.HasPrefix(source, "git+"):
		req.GitURL = strings.TrimPrefix(source, "git+")
	case isPathSource(source):
		req.Path = source
	case expectName && req.Name == "" && isPackageName(source):
		// Bare name: match any version.
		req.Name = source
		req.Selector = MatchAnySelector()
	default:
		selector, err := ParseSelector(source)
		if err != nil {
			return types.Requirement{}, err
		}
		req.Selector = selector
	}

	if req.Registry != "" && req.Kind() != types.SourceRegistry {
		return types.Requirement{}, invalidRequirement(original,
			"--registry can only be specified for dependencies resolved in a registry")
	}
	return req, nil
}

func invalidRequirement(line string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid requirement %q: %s", line, reason))
}

func isPathSource(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, `.\`) || filepath.IsAbs(s)
}

func isPackageName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '/':
		default:
			return false
		}
	}
	return true
}

// SplitGitRef splits an optional "@ref" suffix from a git URL. An "@"
// that is part of the authority (user@host) is left alone.
func SplitGitRef(url string) (string, string) {
	at := strings.LastIndex(url, "@")
	if at <= strings.LastIndex(url, "/") {
		return url, ""
	}
	return url[:at], url[at+1:]
}
