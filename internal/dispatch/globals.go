package dispatch

import (
	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
	"github.com/alexander-akhmetov/stackwrap/internal/logging"
)

// GlobalFlags returns the flags every command accepts.
func GlobalFlags() *flags.Builder {
	return flags.NewBuilder().
		WithString("logs-level", "", "warn", "Log level: debug, info, warn, error, fatal", flags.WithEnv(logging.LevelEnv)).
		WithString("logs-file", "", "/dev/stderr", "File to write logs to", flags.WithEnv("STACKWRAP_LOGS_FILE")).
		WithBool("no-color", "", false, "Disable colored output", flags.WithEnv("STACKWRAP_NO_COLOR")).
		WithString("chdir", "C", "", "Run as if stackwrap was started in this directory", flags.WithEnv("STACKWRAP_CHDIR")).
		WithBool("explain", "", false, "Print the parsed invocation and the argument rewrite instead of running").
		WithBool("interactive", "", true, "Offer a command picker when no command is given on a terminal", flags.WithEnv("STACKWRAP_INTERACTIVE")).
		WithBool("help", "h", false, "Show help")
}

// LeadingGlobals splits argv into the global flag tokens that precede the
// command name and everything from the command name on. Only global flags
// may appear before the command.
func LeadingGlobals(global *flags.Builder, argv []string) (globals, rest []string, err error) {
	i := 0
	for i < len(argv) {
		tok := argv[i]
		if tok == "--" || !flags.IsFlagToken(tok) {
			break
		}
		key, _, inline := flags.SplitToken(tok)
		spec, ok := global.LookupKey(key)
		if !ok {
			return nil, nil, clierr.UnknownFlag(key, global.Keys())
		}
		i++
		if spec.Kind.TakesValue() && !inline {
			if i >= len(argv) || isGlobalKey(global, argv[i]) {
				return nil, nil, clierr.MissingRequiredValue(key)
			}
			i++
		}
	}
	return argv[:i:i], argv[i:], nil
}

func isGlobalKey(global *flags.Builder, tok string) bool {
	if tok == "--" {
		return true
	}
	key, _, _ := flags.SplitToken(tok)
	_, ok := global.LookupKey(key)
	return ok
}

// WorkDir returns the --chdir value given before the command, if any. It is
// read before configuration is loaded, so parse errors are left to Dispatch.
func WorkDir(argv []string) string {
	global := GlobalFlags()
	globals, _, err := LeadingGlobals(global, argv)
	if err != nil {
		return ""
	}
	res, err := flags.NewParser(global, nil).Parse(globals)
	if err != nil {
		return ""
	}
	return res.Global.String("chdir")
}
