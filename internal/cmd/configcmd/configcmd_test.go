package configcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/config"
	"github.com/alexander-akhmetov/stackwrap/internal/dispatch"
)

func loadConfig(t *testing.T, local string) *config.Config {
	t.Helper()
	globalDir := filepath.Join(t.TempDir(), "global")
	localDir := ""
	if local != "" {
		localDir = t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(localDir, "config.yaml"), []byte(local), 0o600))
	}
	cfg, err := config.LoadWithDirs(globalDir, localDir)
	require.NoError(t, err)
	return cfg
}

func run(t *testing.T, cfg *config.Config, argv ...string) (string, string, int) {
	t.Helper()
	reg := command.NewRegistry(dispatch.GlobalFlags())
	require.NoError(t, reg.Register(NewProvider(cfg)))
	require.NoError(t, reg.Activate())

	var stdout, stderr bytes.Buffer
	d := dispatch.New(reg,
		dispatch.WithIO(&bytes.Buffer{}, &stdout, &stderr),
		dispatch.WithTerminal(false, 80),
		dispatch.WithConfig(cfg),
	)
	code := d.Dispatch(context.Background(), argv)
	return stdout.String(), stderr.String(), code
}

func TestShowYAML(t *testing.T) {
	cfg := loadConfig(t, "components:\n  terraform:\n    command: tofu\n")
	out, stderr, code := run(t, cfg, "config", "show")
	require.Equal(t, clierr.ExitOK, code, stderr)

	assert.Contains(t, out, "# global config: "+cfg.ConfigDir())
	assert.Contains(t, out, "# local config:  "+cfg.LocalDir())
	assert.Contains(t, out, "# sources:       embedded, ")
	assert.Contains(t, out, "command: tofu")
}

func TestShowWithoutLocalConfig(t *testing.T) {
	out, _, code := run(t, loadConfig(t, ""), "config", "show")
	require.Equal(t, clierr.ExitOK, code)
	assert.Contains(t, out, "(none detected)")
}

func TestShowJSON(t *testing.T) {
	cfg := loadConfig(t, "flags:\n  stack: dev\n")
	for _, argv := range [][]string{
		{"config", "show", "--format", "json"},
		{"config", "show", "-format", "json"},
		{"config", "show", "-o=json"},
	} {
		out, stderr, code := run(t, cfg, argv...)
		require.Equal(t, clierr.ExitOK, code, "%q: %s", argv, stderr)
		assert.Equal(t, "dev", gjson.Get(out, "flags.stack").String())
		assert.Equal(t, "terraform", gjson.Get(out, "components.terraform.command").String())
		assert.Equal(t, "embedded", gjson.Get(out, "sources.0").String())
	}
}

func TestShowFormatFromConfig(t *testing.T) {
	cfg := loadConfig(t, "commands:\n  config show:\n    format: json\n")
	out, _, code := run(t, cfg, "config", "show")
	require.Equal(t, clierr.ExitOK, code)
	assert.True(t, gjson.Valid(out))
}

func TestShowErrors(t *testing.T) {
	cfg := loadConfig(t, "")

	_, stderr, code := run(t, cfg, "config", "show", "--format", "ini")
	assert.Equal(t, clierr.ExitUsage, code)
	assert.Contains(t, stderr, "valid formats: yaml, json")

	_, _, code = run(t, cfg, "config")
	assert.Equal(t, clierr.ExitNotFound, code)

	_, _, code = run(t, cfg, "config", "show", "-x")
	assert.Equal(t, clierr.ExitUsage, code)
}
