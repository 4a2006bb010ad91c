// Package help renders usage text and shell completion for the commands in
// a registry. It mirrors the registry as a cobra command tree; cobra is
// used for rendering and completion only, never for dispatch.
package help

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
)

const rootLong = `stackwrap runs infrastructure tools such as terraform through one command
line. Legacy single-dash flags are translated before parsing; flags meant for
the wrapped tool are passed through to it unchanged.`

// Shells supported by Completion.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// Options controls rendering.
type Options struct {
	// Plain disables ANSI styling.
	Plain bool
	// Markdown renders long descriptions with glamour.
	Markdown bool
	Width    int
	Version  string
}

// Tree mirrors reg as a cobra command tree.
func Tree(reg *command.Registry, opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "stackwrap [command]",
		Short:         "Wrap infrastructure tools behind one command line",
		Long:          rootLong,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	reg.Global().AddTo(root.PersistentFlags())
	addChildren(root, reg, opts)
	return root
}

func addChildren(parent *cobra.Command, reg *command.Registry, opts Options) {
	titler := cases.Title(language.English)
	for _, g := range reg.Groups() {
		if g.ID == "" {
			continue
		}
		parent.AddGroup(&cobra.Group{ID: g.ID, Title: titler.String(g.ID) + " Commands:"})
	}

	for _, e := range reg.Entries() {
		c := newCommand(e, opts)
		if e.Children != nil {
			addChildren(c, e.Children, opts)
		}
		parent.AddCommand(c)
		if !parent.HasParent() && e.Provider.Name() == "help" {
			parent.SetHelpCommand(c)
		}
	}
}

func newCommand(e *command.Entry, opts Options) *cobra.Command {
	p := e.Provider
	c := &cobra.Command{
		Use:     strings.TrimSpace(p.Name() + " " + p.Args().Usage()),
		Short:   p.Short(),
		GroupID: p.Group(),
	}
	if e.Children == nil {
		// A Run func makes cobra list the command as available.
		c.Run = func(*cobra.Command, []string) {}
	}
	if d, ok := p.(command.Describer); ok {
		c.Long = renderMarkdown(d.Long(), opts)
		c.Example = d.Example()
	}
	p.Flags().AddTo(c.Flags())

	if e.Compat.Len() > 0 {
		c.FParseErrWhitelist.UnknownFlags = true
		c.SetUsageTemplate(c.UsageTemplate() + compatSection(e.Compat, opts.Plain))
	}
	return c
}

// compatSection lists compatibility flags below the regular usage text.
func compatSection(m *compat.Map, plain bool) string {
	entries := m.Flags()
	width := 0
	for _, f := range entries {
		width = max(width, len(f.Key))
	}

	var b strings.Builder
	b.WriteString("\n" + Title("Compatibility Flags:", plain) + "\n")
	for _, f := range entries {
		key := fmt.Sprintf("%-*s", width, f.Key)
		if !plain {
			key = keyStyle.Render(key)
		}
		var desc string
		switch f.Behavior {
		case compat.RewriteToCanonical:
			desc = "alias for --" + f.Target
		default:
			desc = f.Usage
			if desc == "" {
				desc = "passed to the wrapped tool"
			}
		}
		fmt.Fprintf(&b, "  %s   %s\n", key, escapeTemplate(desc))
	}
	return b.String()
}

func escapeTemplate(s string) string {
	return strings.NewReplacer("{{", `{{"{{"}}`, "}}", `{{"}}"}}`).Replace(s)
}

func renderMarkdown(md string, opts Options) string {
	if !opts.Markdown || opts.Plain || md == "" {
		return md
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-6, 40)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Write renders help for the command at path, or the root help when path
// is empty or unknown.
func Write(w io.Writer, reg *command.Registry, path []string, opts Options) error {
	root := Tree(reg, opts)
	root.SetOut(w)
	root.SetErr(w)

	target := root
	if len(path) > 0 {
		if found, _, err := root.Find(path); err == nil {
			target = found
		}
	}
	return target.Help()
}

// Completion writes the completion script for shell.
func Completion(w io.Writer, reg *command.Registry, shell string, opts Options) error {
	root := Tree(reg, opts)
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return clierr.InvalidPositionalArgs("completion", fmt.Sprintf("unsupported shell %q (valid: %s)", shell, strings.Join(Shells, ", ")))
	}
}

// IsCompletionRequest reports whether argv is a call from a generated
// completion script.
func IsCompletionRequest(argv []string) bool {
	return len(argv) > 0 && (argv[0] == cobra.ShellCompRequestCmd || argv[0] == cobra.ShellCompNoDescRequestCmd)
}

// Complete answers a completion request using the cobra tree.
func Complete(ctx context.Context, reg *command.Registry, argv []string, stdout, stderr io.Writer) error {
	root := Tree(reg, Options{Plain: true})
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
