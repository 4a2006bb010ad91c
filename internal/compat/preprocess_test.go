package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

func commandFlags() *flags.Builder {
	return flags.NewBuilder().
		WithString("stack", "", "", "Stack").
		WithBool("dry-run", "", false, "Dry run").
		WithString("from-plan", "", "", "Plan file")
}

func terraformMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap(commandFlags(), []Flag{
		Rewrite("-s", "stack"),
		Rewrite("-dry-run", "dry-run"),
		Divert("-var", "Set a variable"),
		Divert("-var-file", "Load variables from a file"),
		DivertSwitch("-auto-approve", "Skip approval"),
	}, flags.NewBuilder().WithBool("help", "h", false, "Help"))
	require.NoError(t, err)
	return m
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name      string
		raw       []string
		args      []string
		separated []string
	}{
		{
			name:      "rewrite and divert",
			raw:       []string{"-s", "dev", "-var", "foo=bar", "-var-file", "prod.tfvars"},
			args:      []string{"--stack", "dev"},
			separated: []string{"-var", "foo=bar", "-var-file", "prod.tfvars"},
		},
		{
			name:      "inline values stay single tokens",
			raw:       []string{"-s=dev", "-var=foo=bar"},
			args:      []string{"--stack=dev"},
			separated: []string{"-var=foo=bar"},
		},
		{
			name:      "boolean rewrite",
			raw:       []string{"-dry-run", "vpc"},
			args:      []string{"--dry-run", "vpc"},
			separated: []string{},
		},
		{
			name:      "boolean divert does not consume",
			raw:       []string{"-auto-approve", "vpc"},
			args:      []string{"vpc"},
			separated: []string{"-auto-approve"},
		},
		{
			name:      "canonical only is identity",
			raw:       []string{"plan", "vpc", "--stack", "dev", "--dry-run"},
			args:      []string{"plan", "vpc", "--stack", "dev", "--dry-run"},
			separated: []string{},
		},
		{
			name:      "unmapped flag passes through without consuming",
			raw:       []string{"-x", "value", "-s", "dev"},
			args:      []string{"-x", "value", "--stack", "dev"},
			separated: []string{},
		},
		{
			name:      "end of flags copied verbatim",
			raw:       []string{"-s", "dev", "--", "-s", "x", "-var", "y"},
			args:      []string{"--stack", "dev", "--", "-s", "x", "-var", "y"},
			separated: []string{},
		},
		{
			name:      "divert keeps relative order",
			raw:       []string{"-var", "a=1", "vpc", "-var-file", "f", "-var", "b=2"},
			args:      []string{"vpc"},
			separated: []string{"-var", "a=1", "-var-file", "f", "-var", "b=2"},
		},
		{
			name:      "value that looks like a flag is consumed",
			raw:       []string{"-var", "-1", "-var", "x=-target"},
			args:      []string{},
			separated: []string{"-var", "-1", "-var", "x=-target"},
		},
		{
			name:      "empty input",
			raw:       []string{},
			args:      []string{},
			separated: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Preprocess(tt.raw, terraformMap(t))
			require.NoError(t, err)
			assert.Equal(t, tt.args, res.Args)
			assert.Equal(t, tt.separated, res.Separated)
		})
	}
}

func TestPreprocessMissingValue(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		key  string
	}{
		{"divert at end", []string{"-var"}, `"-var"`},
		{"rewrite at end", []string{"plan", "-s"}, `"-s"`},
		{"followed by legacy key", []string{"-var", "-var-file", "x"}, `"-var"`},
		{"followed by canonical key", []string{"-s", "--dry-run"}, `"-s"`},
		{"followed by global key", []string{"-s", "-h"}, `"-s"`},
		{"followed by marker", []string{"-var", "--", "x"}, `"-var"`},
		{"canonical followed by legacy key", []string{"vpc", "--stack", "-s"}, `"--stack"`},
		{"canonical followed by inline legacy key", []string{"--stack", "-s=dev"}, `"--stack"`},
		{"canonical followed by diverted key", []string{"--stack", "-var", "x=1"}, `"--stack"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Preprocess(tt.raw, terraformMap(t))
			require.ErrorIs(t, err, clierr.ErrMissingRequiredValue)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestPreprocessNilMapIsIdentity(t *testing.T) {
	raw := []string{"-s", "dev", "-var", "x", "--", "-y"}
	res, err := Preprocess(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, res.Args)
	assert.Empty(t, res.Separated)
}

// Every input token lands in exactly one output.
func TestPreprocessPreservesTokenCount(t *testing.T) {
	inputs := [][]string{
		{"-s", "dev", "-var", "a", "x", "-auto-approve"},
		{"-var=a", "-s=b", "--", "-var"},
		{"-dry-run", "-x", "-y", "z"},
	}
	for _, raw := range inputs {
		res, err := Preprocess(raw, terraformMap(t))
		require.NoError(t, err)
		assert.Equal(t, len(raw), len(res.Args)+len(res.Separated), "%q", raw)
	}
}

func TestPreprocessDoesNotMutateInput(t *testing.T) {
	raw := []string{"-s", "dev", "-var", "a"}
	orig := append([]string(nil), raw...)
	_, err := Preprocess(raw, terraformMap(t))
	require.NoError(t, err)
	assert.Equal(t, orig, raw)
}
