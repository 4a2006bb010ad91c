package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
)

func TestLeadingGlobals(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		globals []string
		rest    []string
	}{
		{"none", []string{"terraform", "plan"}, []string{}, []string{"terraform", "plan"}},
		{"value flag", []string{"--logs-level", "debug", "version"}, []string{"--logs-level", "debug"}, []string{"version"}},
		{"inline and shorthand", []string{"--logs-level=debug", "-C", "/tmp", "version", "-h"}, []string{"--logs-level=debug", "-C", "/tmp"}, []string{"version", "-h"}},
		{"switch", []string{"--explain", "version"}, []string{"--explain"}, []string{"version"}},
		{"only globals", []string{"--help"}, []string{"--help"}, []string{}},
		{"marker stops", []string{"--", "version"}, []string{}, []string{"--", "version"}},
		{"empty", nil, []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globals, rest, err := LeadingGlobals(GlobalFlags(), tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.globals, append([]string{}, globals...))
			assert.Equal(t, tt.rest, append([]string{}, rest...))
		})
	}
}

func TestLeadingGlobalsErrors(t *testing.T) {
	_, _, err := LeadingGlobals(GlobalFlags(), []string{"-s", "dev", "terraform"})
	assert.ErrorIs(t, err, clierr.ErrUnknownFlag)

	_, _, err = LeadingGlobals(GlobalFlags(), []string{"--chdir", "--explain"})
	assert.ErrorIs(t, err, clierr.ErrMissingRequiredValue)
}

func TestLeadingGlobalsDoesNotAlias(t *testing.T) {
	argv := []string{"--explain", "version"}
	globals, _, err := LeadingGlobals(GlobalFlags(), argv)
	require.NoError(t, err)
	globals = append(globals, "extra")
	assert.Equal(t, "version", argv[1])
	assert.Len(t, globals, 2)
}

func TestWorkDir(t *testing.T) {
	assert.Equal(t, "/srv/infra", WorkDir([]string{"-C", "/srv/infra", "terraform", "plan"}))
	assert.Equal(t, "/srv/infra", WorkDir([]string{"--chdir=/srv/infra", "version"}))
	// Dispatch rejects a --chdir after the command name.
	assert.Empty(t, WorkDir([]string{"terraform", "plan", "-C", "/srv/infra"}))
	assert.Empty(t, WorkDir([]string{"--bogus", "-C", "/x"}))
}
