// Package version implements the version command.
package version

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
	"github.com/alexander-akhmetov/stackwrap/internal/runner"
)

// Info is the build information reported by the command.
type Info struct {
	Version string
	Commit  string
	Date    string
	// Tool is the wrapped executable, looked up in PATH.
	Tool string
}

type provider struct {
	command.Base
	info     Info
	lookPath func(string) (string, bool)
}

// NewProvider returns the version command.
func NewProvider(info Info) command.Provider {
	return &provider{
		Base: command.Base{
			Command: "version",
			GroupID: command.GroupUtility,
			Summary: "Print version information",
			Options: flags.NewBuilder().
				WithString("format", "o", "text", "Output format: text or json").
				WithBool("json", "", false, "Same as --format json"),
			Positional: flags.NoArgs(),
			Legacy: []compat.Flag{
				compat.Rewrite("-format", "format"),
				compat.Rewrite("-json", "json"),
			},
		},
		info:     info,
		lookPath: runner.LookPath,
	}
}

func (p *provider) Run(_ context.Context, inv *command.Invocation) error {
	format := inv.Options.String("format")
	if inv.Options.Bool("json") {
		format = "json"
	}

	toolPath, found := "", false
	if p.info.Tool != "" {
		toolPath, found = p.lookPath(p.info.Tool)
	}

	switch format {
	case "text":
		fmt.Fprintf(inv.Stdout, "stackwrap %s (commit %s, built %s, %s %s/%s)\n",
			p.info.Version, p.info.Commit, p.info.Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if p.info.Tool != "" {
			if !found {
				toolPath = "not found in PATH"
			}
			fmt.Fprintf(inv.Stdout, "%s: %s\n", p.info.Tool, toolPath)
		}
		return nil
	case "json":
		doc := "{}"
		doc, _ = sjson.Set(doc, "version", p.info.Version)
		doc, _ = sjson.Set(doc, "commit", p.info.Commit)
		doc, _ = sjson.Set(doc, "date", p.info.Date)
		doc, _ = sjson.Set(doc, "go", runtime.Version())
		doc, _ = sjson.Set(doc, "platform", runtime.GOOS+"/"+runtime.GOARCH)
		if p.info.Tool != "" {
			doc, _ = sjson.Set(doc, "tool.name", p.info.Tool)
			doc, _ = sjson.Set(doc, "tool.path", toolPath)
			doc, _ = sjson.Set(doc, "tool.found", found)
		}
		_, err := inv.Stdout.Write(pretty.Pretty([]byte(doc)))
		return err
	default:
		return clierr.InvalidFlagValue("format", format, inv.Options.Source("format").String(),
			fmt.Errorf("valid formats: text, json"))
	}
}
