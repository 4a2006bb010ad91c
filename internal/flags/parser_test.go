package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
)

func planFlags() *Builder {
	return NewBuilder().
		WithString("stack", "s", "", "Stack name", WithEnv("TEST_STACK")).
		WithBool("dry-run", "", false, "Print only").
		WithStringSlice("target", "", nil, "Targets", WithEnv("TEST_TARGETS")).
		WithInt("parallelism", "p", 10, "Parallel operations", WithEnv("TEST_PARALLELISM"))
}

func globalFlags() *Builder {
	return NewBuilder().
		WithString("logs-level", "", "warn", "Log level").
		WithBool("help", "h", false, "Show help")
}

func TestParseTokenForms(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		stack      string
		dryRun     bool
		positional []string
	}{
		{"long with space", []string{"--stack", "dev"}, "dev", false, nil},
		{"long with equals", []string{"--stack=dev"}, "dev", false, nil},
		{"shorthand", []string{"-s", "dev"}, "dev", false, nil},
		{"shorthand with equals", []string{"-s=dev"}, "dev", false, nil},
		{"value keeps later equals", []string{"--stack=a=b"}, "a=b", false, nil},
		{"bool switch", []string{"--dry-run"}, "", true, nil},
		{"bool explicit false", []string{"--dry-run=false"}, "", false, nil},
		{"positionals interleaved", []string{"vpc", "--stack", "dev", "extra"}, "dev", false, []string{"vpc", "extra"}},
		{"lone dash is positional", []string{"-"}, "", false, []string{"-"}},
		{"end of flags", []string{"--stack", "dev", "--", "--dry-run", "-x"}, "dev", false, []string{"--dry-run", "-x"}},
		{"last occurrence wins", []string{"--stack", "a", "-s", "b"}, "b", false, nil},
		{"value may look negative", []string{"--stack", "-1"}, "-1", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewParser(globalFlags(), planFlags()).Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.stack, res.Options.String("stack"))
			assert.Equal(t, tt.dryRun, res.Options.Bool("dry-run"))
			assert.Equal(t, tt.positional, res.Positional)
		})
	}
}

func TestParseGlobalAndCommandFlags(t *testing.T) {
	res, err := NewParser(globalFlags(), planFlags()).Parse([]string{"--logs-level", "debug", "-s", "prod", "-h"})
	require.NoError(t, err)

	assert.Equal(t, "debug", res.Global.String("logs-level"))
	assert.True(t, res.Global.Bool("help"))
	assert.Equal(t, "prod", res.Options.String("stack"))
	assert.False(t, res.Options.Has("logs-level"))
}

func TestParseSliceAccumulates(t *testing.T) {
	res, err := NewParser(nil, planFlags()).Parse([]string{"--target", "a", "--target=b,c", "--target", "d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b,c", "d"}, res.Options.StringSlice("target"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		sentinel error
		contains string
	}{
		{"unknown long", []string{"--nope"}, clierr.ErrUnknownFlag, `"--nope"`},
		{"unknown single dash", []string{"-x", "value"}, clierr.ErrUnknownFlag, `"-x"`},
		{"unknown with value", []string{"--nope=1"}, clierr.ErrUnknownFlag, `"--nope"`},
		{"missing at end", []string{"--stack"}, clierr.ErrMissingRequiredValue, `"--stack"`},
		{"missing before flag", []string{"--stack", "--dry-run"}, clierr.ErrMissingRequiredValue, `"--stack"`},
		{"missing before marker", []string{"-s", "--"}, clierr.ErrMissingRequiredValue, `"-s"`},
		{"bad int", []string{"--parallelism", "abc"}, clierr.ErrInvalidFlagValue, `"abc"`},
		{"bad bool", []string{"--dry-run=maybe"}, clierr.ErrInvalidFlagValue, "--dry-run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(globalFlags(), planFlags()).Parse(tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParsePermissiveKeepsUnknownTokens(t *testing.T) {
	res, err := NewParser(nil, planFlags(), Permissive(true)).Parse([]string{"-x", "--stack", "dev", "--nope=1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "--nope=1"}, res.Positional)
	assert.Equal(t, "dev", res.Options.String("stack"))
}

func TestParsePrecedence(t *testing.T) {
	config := map[string]any{"stack": "from-config", "parallelism": 5}

	t.Run("default", func(t *testing.T) {
		res, err := NewParser(nil, planFlags()).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, 10, res.Options.Int("parallelism"))
		assert.Equal(t, SourceDefault, res.Options.Source("parallelism"))
		assert.Equal(t, []string{}, res.Options.StringSlice("target"))
	})

	t.Run("config over default", func(t *testing.T) {
		res, err := NewParser(nil, planFlags(), WithConfig(config)).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, "from-config", res.Options.String("stack"))
		assert.Equal(t, SourceConfig, res.Options.Source("stack"))
		assert.Equal(t, 5, res.Options.Int("parallelism"))
	})

	t.Run("env over config", func(t *testing.T) {
		t.Setenv("TEST_STACK", "from-env")
		res, err := NewParser(nil, planFlags(), WithConfig(config)).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, "from-env", res.Options.String("stack"))
		assert.Equal(t, SourceEnv, res.Options.Source("stack"))
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("TEST_STACK", "from-env")
		res, err := NewParser(nil, planFlags(), WithConfig(config)).Parse([]string{"-s", "from-flag"})
		require.NoError(t, err)
		assert.Equal(t, "from-flag", res.Options.String("stack"))
		assert.True(t, res.Options.Changed("stack"))
	})

	t.Run("empty env is ignored", func(t *testing.T) {
		t.Setenv("TEST_STACK", "")
		res, err := NewParser(nil, planFlags(), WithConfig(config)).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, "from-config", res.Options.String("stack"))
	})

	t.Run("env list is comma separated", func(t *testing.T) {
		t.Setenv("TEST_TARGETS", "a, b,,c")
		res, err := NewParser(nil, planFlags()).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, res.Options.StringSlice("target"))
	})

	t.Run("config list", func(t *testing.T) {
		res, err := NewParser(nil, planFlags(), WithConfig(map[string]any{"target": []any{"x", "y"}})).Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, res.Options.StringSlice("target"))
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("TEST_PARALLELISM", "lots")
		_, err := NewParser(nil, planFlags()).Parse(nil)
		require.ErrorIs(t, err, clierr.ErrInvalidFlagValue)
		assert.Contains(t, err.Error(), "from env")
	})
}

func TestValuesJSON(t *testing.T) {
	res, err := NewParser(nil, planFlags()).Parse([]string{"-s", "dev"})
	require.NoError(t, err)

	doc := res.Options.JSON()
	assert.Equal(t, "dev", gjson.Get(doc, "stack.value").String())
	assert.Equal(t, "flag", gjson.Get(doc, "stack.source").String())
	assert.Equal(t, int64(10), gjson.Get(doc, "parallelism.value").Int())
	assert.Equal(t, "default", gjson.Get(doc, "dry-run.source").String())
}

func TestValuesAreCopies(t *testing.T) {
	res, err := NewParser(nil, planFlags()).Parse([]string{"--target", "a"})
	require.NoError(t, err)

	got := res.Options.StringSlice("target")
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, res.Options.StringSlice("target"))
}
