package flags

import (
	"fmt"
	"strings"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
)

// Unbounded as Max accepts any number of trailing arguments.
const Unbounded = -1

// PositionalArgs is the positional contract of a command. The zero value
// accepts no arguments.
type PositionalArgs struct {
	Names []string
	Min   int
	Max   int
}

// NoArgs accepts no positional arguments.
func NoArgs() PositionalArgs {
	return PositionalArgs{}
}

// AnyArgs accepts any number of positional arguments.
func AnyArgs() PositionalArgs {
	return PositionalArgs{Max: Unbounded}
}

// RequiredArgs requires exactly one argument per name.
func RequiredArgs(names ...string) PositionalArgs {
	return PositionalArgs{Names: names, Min: len(names), Max: len(names)}
}

// OptionalArgs accepts up to one argument per name.
func OptionalArgs(names ...string) PositionalArgs {
	return PositionalArgs{Names: names, Max: len(names)}
}

// Validate checks args against the contract. command is used in the error.
func (p PositionalArgs) Validate(command string, args []string) error {
	n := len(args)
	switch {
	case p.Max == 0 && n > 0:
		return clierr.InvalidPositionalArgs(command, fmt.Sprintf("accepts no arguments, received %q", args))
	case n < p.Min:
		missing := ""
		if p.Min <= len(p.Names) {
			missing = " (missing " + strings.Join(p.Names[n:p.Min], ", ") + ")"
		}
		return clierr.InvalidPositionalArgs(command, fmt.Sprintf("requires at least %d argument(s), received %d%s", p.Min, n, missing))
	case p.Max != Unbounded && n > p.Max:
		return clierr.InvalidPositionalArgs(command, fmt.Sprintf("accepts at most %d argument(s), received %d", p.Max, n))
	}
	return nil
}

// Usage renders the contract for help output, e.g. "<component> [args...]".
func (p PositionalArgs) Usage() string {
	var parts []string
	for i, name := range p.Names {
		if i < p.Min {
			parts = append(parts, "<"+name+">")
		} else {
			parts = append(parts, "["+name+"]")
		}
	}
	if p.Max == Unbounded {
		parts = append(parts, "[args...]")
	}
	return strings.Join(parts, " ")
}
