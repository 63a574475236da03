package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		version string
		matches bool
	}{
		{name: "caret matches minor bump", expr: "^1.2.0", version: "1.9.3", matches: true},
		{name: "caret rejects major bump", expr: "^1.2.0", version: "2.0.0", matches: false},
		{name: "tilde matches patch bump", expr: "~1.2.0", version: "1.2.9", matches: true},
		{name: "tilde rejects minor bump", expr: "~1.2.0", version: "1.3.0", matches: false},
		{name: "range", expr: ">=1.0.0 <2.0.0", version: "1.5.0", matches: true},
		{name: "exact", expr: "1.2.3", version: "1.2.3", matches: true},
		{name: "star matches everything", expr: "*", version: "0.0.1", matches: true},
		{name: "empty matches everything", expr: "", version: "42.0.0", matches: true},
		{name: "unparseable version never matches", expr: "^1.0.0", version: "not-a-version", matches: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector, err := ParseSelector(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, selector.Matches(tt.version))
		})
	}
}

func TestParseSelectorInvalid(t *testing.T) {
	_, err := ParseSelector("not a selector!")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestMatchAnySelector(t *testing.T) {
	selector := MatchAnySelector()
	assert.True(t, selector.Matches("1.0.0"))
	assert.Equal(t, "*", selector.String())
}
