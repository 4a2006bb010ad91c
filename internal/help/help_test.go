package help

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

type stub struct {
	command.Base
}

func (s *stub) Run(context.Context, *command.Invocation) error { return nil }

func testRegistry(t *testing.T) *command.Registry {
	t.Helper()
	reg := command.NewRegistry(flags.NewBuilder().
		WithString("logs-level", "", "warn", "Log level").
		WithBool("help", "h", false, "Show help"))

	plan := &stub{Base: command.Base{
		Command:    "plan",
		Summary:    "Show changes required by the current configuration",
		Details:    "Runs `terraform plan` for a component.",
		Examples:   "stackwrap terraform plan vpc -s dev",
		Options:    flags.NewBuilder().WithString("stack", "s", "", "Stack name"),
		Positional: flags.RequiredArgs("component"),
		Legacy: []compat.Flag{
			compat.Rewrite("-stack", "stack"),
			compat.Divert("-var", "Set a value for one of the input variables"),
			compat.DivertSwitch("-refresh-only", ""),
		},
	}}
	require.NoError(t, reg.Register(command.NewGroup(command.Base{
		Command: "terraform",
		GroupID: command.GroupInfrastructure,
		Summary: "Run terraform commands",
	}, plan)))
	require.NoError(t, reg.Register(&stub{Base: command.Base{
		Command: "version",
		GroupID: command.GroupUtility,
		Summary: "Print version information",
	}}))
	require.NoError(t, reg.Register(&stub{Base: command.Base{
		Command:    "help",
		GroupID:    command.GroupUtility,
		Summary:    "Help about any command",
		Positional: flags.AnyArgs(),
	}}))
	require.NoError(t, reg.Activate())
	return reg
}

func TestWriteRootHelp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testRegistry(t), nil, Options{Plain: true}))

	out := buf.String()
	assert.Contains(t, out, "Infrastructure Commands:")
	assert.Contains(t, out, "Utility Commands:")
	assert.Contains(t, out, "terraform")
	assert.Contains(t, out, "version")
	assert.Contains(t, out, "--logs-level")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Infrastructure")), bytes.Index(buf.Bytes(), []byte("Utility")))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n  help ")), "help listed once")
}

func TestWriteCommandHelp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testRegistry(t), []string{"terraform", "plan"}, Options{Plain: true}))

	out := buf.String()
	assert.Contains(t, out, "stackwrap terraform plan <component>")
	assert.Contains(t, out, "Runs `terraform plan` for a component.")
	assert.Contains(t, out, "stackwrap terraform plan vpc -s dev")
	assert.Contains(t, out, "-s, --stack")
	assert.Contains(t, out, "Global Flags:")
	assert.Contains(t, out, "Compatibility Flags:")
	assert.Contains(t, out, "-stack          alias for --stack")
	assert.Contains(t, out, "-var            Set a value for one of the input variables")
	assert.Contains(t, out, "-refresh-only   passed to the wrapped tool")
}

func TestWriteUnknownPathFallsBackToRoot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testRegistry(t), []string{"nope"}, Options{Plain: true}))
	assert.Contains(t, buf.String(), "Infrastructure Commands:")
}

func TestWriteEmptyRegistry(t *testing.T) {
	reg := command.NewRegistry(nil)
	require.NoError(t, reg.Activate())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, reg, nil, Options{Plain: true}))
	assert.Contains(t, buf.String(), "stackwrap")
}

func TestCompletion(t *testing.T) {
	reg := testRegistry(t)
	for _, shell := range Shells {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Completion(&buf, reg, shell, Options{}))
			assert.Contains(t, buf.String(), "stackwrap")
		})
	}

	err := Completion(&bytes.Buffer{}, reg, "tcsh", Options{})
	assert.ErrorIs(t, err, clierr.ErrInvalidPositionalArgs)
}

func TestComplete(t *testing.T) {
	assert.True(t, IsCompletionRequest([]string{"__complete", "ter"}))
	assert.True(t, IsCompletionRequest([]string{"__completeNoDesc"}))
	assert.False(t, IsCompletionRequest([]string{"terraform"}))
	assert.False(t, IsCompletionRequest(nil))

	var out bytes.Buffer
	err := Complete(context.Background(), testRegistry(t), []string{"__complete", "terraform", ""}, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "plan")
}

func TestColorDiff(t *testing.T) {
	diff := "--- raw\n+++ rewritten\n@@ -1 +1 @@\n--s\n+--stack\n dev\n"
	assert.Equal(t, diff, ColorDiff(diff, true))
	assert.Empty(t, ColorDiff("", false))
	assert.Contains(t, ColorDiff(diff, false), "--stack")
}
