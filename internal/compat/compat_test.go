package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
)

func TestNewMapConflicts(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Flag
		contains string
	}{
		{"missing target", []Flag{Rewrite("-x", "nonexistent")}, `compatibility alias "-x" references non-existent flag "--nonexistent"`},
		{"empty target", []Flag{{Key: "-x", Behavior: RewriteToCanonical}}, "has no canonical target"},
		{"duplicate key", []Flag{Divert("-var", ""), Divert("-var", "")}, "more than once"},
		{"rewrite and divert same key", []Flag{Rewrite("-s", "stack"), Divert("-s", "")}, "more than once"},
		{"divert shadows canonical", []Flag{Divert("--stack", "")}, "shadows a canonical flag"},
		{"divert with target", []Flag{{Key: "-x", Behavior: DivertToExternal, Target: "stack"}}, "names a target"},
		{"no dash", []Flag{Divert("var", "")}, "is not a flag key"},
		{"bare marker", []Flag{Divert("--", "")}, "is not a flag key"},
		{"equals in key", []Flag{Divert("-var=x", "")}, "must not contain"},
		{"unknown behavior", []Flag{{Key: "-x", Behavior: Behavior(9)}}, "unknown behavior"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMap(commandFlags(), tt.entries)
			require.ErrorIs(t, err, clierr.ErrConflictingCompatibilityMapping)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMapAccessors(t *testing.T) {
	m := terraformMap(t)

	assert.Equal(t, 5, m.Len())
	assert.Equal(t, []string{"-auto-approve", "-dry-run", "-s", "-var", "-var-file"}, m.Keys())

	f, ok := m.Lookup("-s")
	require.True(t, ok)
	assert.Equal(t, RewriteToCanonical, f.Behavior)
	assert.True(t, f.TakesValue)

	f, ok = m.Lookup("-dry-run")
	require.True(t, ok)
	assert.False(t, f.TakesValue)

	flagsOut := m.Flags()
	require.Len(t, flagsOut, 5)
	assert.Equal(t, "-s", flagsOut[0].Key)
	assert.Equal(t, "-auto-approve", flagsOut[4].Key)

	var nilMap *Map
	assert.Zero(t, nilMap.Len())
	assert.Nil(t, nilMap.Flags())
	assert.False(t, nilMap.Recognized("-s"))
	assert.True(t, nilMap.Recognized("--"))
}

func TestRecognized(t *testing.T) {
	m := terraformMap(t)
	tests := []struct {
		tok  string
		want bool
	}{
		{"--", true},
		{"-var", true},
		{"-var=x", true},
		{"--stack", true},
		{"--stack=dev", true},
		{"-h", true},
		{"--help", true},
		{"-1", false},
		{"-literal", false},
		{"value", false},
		{"-", false},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Recognized(tt.tok))
		})
	}
}
