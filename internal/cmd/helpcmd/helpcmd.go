// Package helpcmd implements the help and completion commands. Both read
// the registry they are registered in.
package helpcmd

import (
	"context"

	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
	"github.com/alexander-akhmetov/stackwrap/internal/help"
)

type helpProvider struct {
	command.Base
	reg     *command.Registry
	version string
}

// NewProvider returns the help command. reg is read at run time, after
// activation.
func NewProvider(reg *command.Registry, version string) command.Provider {
	return &helpProvider{
		Base: command.Base{
			Command:    "help",
			GroupID:    command.GroupUtility,
			Summary:    "Help about any command",
			Positional: flags.PositionalArgs{Names: []string{"command"}, Max: flags.Unbounded},
		},
		reg:     reg,
		version: version,
	}
}

func (p *helpProvider) Run(_ context.Context, inv *command.Invocation) error {
	var path []string
	if len(inv.Positional) > 0 {
		e, _, err := p.reg.Resolve(inv.Positional)
		if err != nil {
			return err
		}
		path = e.Path
	}
	plain := help.PlainFor(inv.Stdout, inv.Global.Bool("no-color"))
	return help.Write(inv.Stdout, p.reg, path, help.Options{
		Plain:    plain,
		Markdown: !plain,
		Version:  p.version,
	})
}

type completionProvider struct {
	command.Base
	reg *command.Registry
}

const completionDetails = `Generate the autocompletion script for the given shell.

Load it in the current bash session with:

    source <(stackwrap completion bash)`

// NewCompletionProvider returns the completion command.
func NewCompletionProvider(reg *command.Registry) command.Provider {
	return &completionProvider{
		Base: command.Base{
			Command:    "completion",
			GroupID:    command.GroupUtility,
			Summary:    "Generate the autocompletion script for a shell",
			Details:    completionDetails,
			Examples:   "  stackwrap completion zsh > \"${fpath[1]}/_stackwrap\"",
			Positional: flags.RequiredArgs("shell"),
		},
		reg: reg,
	}
}

func (p *completionProvider) Run(_ context.Context, inv *command.Invocation) error {
	return help.Completion(inv.Stdout, p.reg, inv.Positional[0], help.Options{Plain: true})
}
