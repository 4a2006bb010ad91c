// Package configcmd implements the config command group.
package configcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/config"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

const showDetails = `Show the fully resolved configuration and where it was loaded from.

Configuration is loaded from multiple sources with the following precedence:

1. Embedded defaults (built into the binary)
2. Global config (` + "`~/.config/stackwrap/config.yaml`" + `, ` + "`.toml`" + ` or ` + "`.hcl`" + `)
3. Environment variables
4. Local config (` + "`.stackwrap/`" + ` at the project root)
5. Command line flags (highest precedence)`

// NewProvider returns the config command group for cfg.
func NewProvider(cfg *config.Config) command.Parent {
	return command.NewGroup(command.Base{
		Command: "config",
		GroupID: command.GroupConfiguration,
		Summary: "Inspect stackwrap configuration",
	}, &show{
		Base: command.Base{
			Command: "show",
			GroupID: command.GroupConfiguration,
			Summary: "Show resolved configuration with its sources",
			Details: showDetails,
			Options: flags.NewBuilder().
				WithString("format", "o", "yaml", "Output format: yaml or json"),
			Positional: flags.NoArgs(),
			Legacy:     []compat.Flag{compat.Rewrite("-format", "format")},
		},
		cfg: cfg,
	})
}

type show struct {
	command.Base
	cfg *config.Config
}

func (s *show) Run(_ context.Context, inv *command.Invocation) error {
	format := inv.Options.String("format")
	if format != "yaml" && format != "json" {
		return clierr.InvalidFlagValue("format", format, inv.Options.Source("format").String(),
			fmt.Errorf("valid formats: yaml, json"))
	}
	out, err := s.cfg.Render(format)
	if err != nil {
		return err
	}

	if format == "json" {
		fmt.Fprint(inv.Stdout, out)
		return nil
	}

	w := inv.Stdout
	fmt.Fprintln(w, "# stackwrap configuration")
	fmt.Fprintf(w, "# global config: %s\n", s.cfg.ConfigDir())
	if s.cfg.LocalDir() != "" {
		fmt.Fprintf(w, "# local config:  %s\n", s.cfg.LocalDir())
	} else {
		fmt.Fprintln(w, "# local config:  (none detected)")
	}
	fmt.Fprintf(w, "# sources:       %s\n", strings.Join(s.cfg.Sources(), ", "))
	fmt.Fprint(w, out)
	return nil
}
