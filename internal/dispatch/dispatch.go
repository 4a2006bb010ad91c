// Package dispatch turns argv into a command invocation: it resolves the
// command, applies compatibility rewriting, parses flags and runs the
// provider.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
	"github.com/alexander-akhmetov/stackwrap/internal/help"
	"github.com/alexander-akhmetov/stackwrap/internal/logging"
	"github.com/alexander-akhmetov/stackwrap/internal/picker"
)

// ConfigSource supplies persisted flag values for a command path.
type ConfigSource interface {
	FlagDefaults(path string) map[string]any
}

// PickFunc asks the user for a command path. A nil path means no choice.
type PickFunc func(ctx context.Context, reg *command.Registry, in io.Reader, out io.Writer) ([]string, error)

// PromptFunc asks the user for one value. An empty answer leaves the value
// missing.
type PromptFunc func(ctx context.Context, title string, choices []string, in io.Reader, out io.Writer) (string, error)

// Dispatcher routes argv to registered providers.
type Dispatcher struct {
	reg     *command.Registry
	config  ConfigSource
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	pick    PickFunc
	prompt  PromptFunc
	tty     bool
	width   int
	version string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConfig sets the persisted flag values.
func WithConfig(src ConfigSource) Option {
	return func(d *Dispatcher) { d.config = src }
}

// WithIO sets the standard streams handed to commands.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdin, d.stdout, d.stderr = stdin, stdout, stderr
	}
}

// WithTerminal overrides terminal detection.
func WithTerminal(tty bool, width int) Option {
	return func(d *Dispatcher) { d.tty, d.width = tty, width }
}

// WithPicker replaces the interactive command picker.
func WithPicker(pick PickFunc) Option {
	return func(d *Dispatcher) { d.pick = pick }
}

// WithPrompt replaces the prompt used for missing arguments.
func WithPrompt(prompt PromptFunc) Option {
	return func(d *Dispatcher) { d.prompt = prompt }
}

// WithVersion sets the version shown in help.
func WithVersion(v string) Option {
	return func(d *Dispatcher) { d.version = v }
}

// New returns a dispatcher over an activated registry.
func New(reg *command.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:    reg,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		pick:   picker.Pick,
		prompt: picker.Ask,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())) {
		d.tty = true
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			d.width = w
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prepared is a resolved and parsed command line, ready to run.
type Prepared struct {
	Entry      *command.Entry
	Invocation *command.Invocation
	// Help is set when --help was given; the provider must not run.
	Help bool
}

// Dispatch runs argv and returns the process exit code. Errors are printed
// to stderr.
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) int {
	if help.IsCompletionRequest(argv) {
		if err := help.Complete(ctx, d.reg, argv, d.stdout, d.stderr); err != nil {
			clierr.Print(d.stderr, err, true)
			return clierr.ExitFailure
		}
		return clierr.ExitOK
	}

	err := d.dispatch(ctx, argv)
	if err != nil {
		clierr.Print(d.stderr, err, d.plain(slices.Contains(argv, "--no-color")))
	}
	return clierr.ExitCode(err)
}

func (d *Dispatcher) dispatch(ctx context.Context, argv []string) error {
	globalArgs, rest, err := LeadingGlobals(d.reg.Global(), argv)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return d.noCommand(ctx, globalArgs)
	}

	prep, err := d.prepare(ctx, argv, d.tty)
	if err != nil {
		return err
	}
	inv := prep.Invocation
	plain := d.plain(inv.Global.Bool("no-color"))

	if prep.Help {
		return help.Write(d.stdout, d.reg, prep.Entry.Path, d.helpOptions(plain))
	}
	if inv.Global.Bool("explain") {
		fmt.Fprintln(d.stdout, inv.JSON())
		fmt.Fprint(d.stdout, help.ColorDiff(inv.RewriteDiff(), plain))
		return nil
	}
	return d.run(ctx, prep)
}

func (d *Dispatcher) noCommand(ctx context.Context, globalArgs []string) error {
	res, err := flags.NewParser(d.reg.Global(), nil, flags.WithConfig(d.defaults(""))).Parse(globalArgs)
	if err != nil {
		return err
	}
	plain := d.plain(res.Global.Bool("no-color"))

	if d.tty && d.reg.Len() > 0 && res.Global.Bool("interactive") && !res.Global.Bool("help") {
		path, err := d.pick(ctx, d.reg, d.stdin, d.stdout)
		if err != nil {
			return err
		}
		if len(path) == 0 {
			return nil
		}
		// A command that needs arguments nobody will prompt for gets its
		// help instead of a usage error.
		if e, rest, err := d.reg.Resolve(path); err == nil && len(rest) < e.Provider.Args().Min && !prompts(e.Provider) {
			return help.Write(d.stdout, d.reg, e.Path, d.helpOptions(plain))
		}
		return d.dispatch(ctx, append(slices.Clone(globalArgs), path...))
	}
	return help.Write(d.stdout, d.reg, nil, d.helpOptions(plain))
}

// Prepare resolves argv to a command and parses it without running
// anything. It never prompts.
func (d *Dispatcher) Prepare(argv []string) (*Prepared, error) {
	return d.prepare(context.Background(), argv, false)
}

func (d *Dispatcher) prepare(ctx context.Context, argv []string, ask bool) (*Prepared, error) {
	globalArgs, rest, err := LeadingGlobals(d.reg.Global(), argv)
	if err != nil {
		return nil, err
	}
	entry, after, err := d.reg.Resolve(rest)
	if err != nil {
		return nil, err
	}
	path := entry.CommandPath()

	pre, err := compat.Preprocess(after, entry.Compat)
	if err != nil {
		return nil, err
	}

	lenient := false
	if l, ok := entry.Provider.(command.Lenient); ok {
		lenient = l.Permissive()
	}
	parser := flags.NewParser(d.reg.Global(), entry.Provider.Flags(),
		flags.WithConfig(d.defaults(path)),
		flags.Permissive(lenient),
	)
	res, err := parser.Parse(append(slices.Clone(globalArgs), pre.Args...))
	if err != nil {
		return nil, err
	}
	if err := d.checkWorkDir(globalArgs, res.Global); err != nil {
		return nil, err
	}

	inv := &command.Invocation{
		ID:         command.NewID(),
		StartedAt:  time.Now(),
		Path:       entry.Path,
		Raw:        slices.Clone(after),
		Rewritten:  pre.Args,
		Global:     res.Global,
		Options:    res.Options,
		Positional: res.Positional,
		Separated:  pre.Separated,
		Stdin:      d.stdin,
		Stdout:     d.stdout,
		Stderr:     d.stderr,
	}
	prep := &Prepared{Entry: entry, Invocation: inv, Help: res.Global.Bool("help")}
	if prep.Help {
		return prep, nil
	}

	if entry.Children != nil {
		return nil, command.MissingSubcommand(entry)
	}
	if ask && res.Global.Bool("interactive") {
		if err := d.fill(ctx, entry.Provider, res); err != nil {
			return nil, err
		}
		inv.Positional = res.Positional
	}
	if err := entry.Provider.Args().Validate(path, res.Positional); err != nil {
		return nil, err
	}
	return prep, nil
}

func prompts(p command.Provider) bool {
	pp, ok := p.(command.Prompting)
	return ok && len(pp.Prompts()) > 0
}

// fill prompts for missing positional arguments in order, then for empty
// flags, but only after a positional was asked for.
func (d *Dispatcher) fill(ctx context.Context, p command.Provider, res *flags.Result) error {
	pp, ok := p.(command.Prompting)
	if !ok {
		return nil
	}
	names := p.Args().Names
	asked := false
	for _, pr := range pp.Prompts() {
		if pr.Flag {
			if !asked || res.Options.String(pr.Name) != "" {
				continue
			}
			v, err := d.ask(ctx, pr)
			if err != nil {
				return err
			}
			if v != "" {
				res.Options.SetPrompted(pr.Name, v)
			}
			continue
		}

		if slices.Index(names, pr.Name) != len(res.Positional) || len(res.Positional) >= p.Args().Min {
			continue
		}
		v, err := d.ask(ctx, pr)
		if err != nil {
			return err
		}
		if v == "" {
			return nil
		}
		res.Positional = append(res.Positional, v)
		asked = true
	}
	return nil
}

func (d *Dispatcher) ask(ctx context.Context, pr command.Prompt) (string, error) {
	var choices []string
	if pr.Choices != nil {
		choices = pr.Choices()
	}
	return d.prompt(ctx, pr.Title, choices, d.stdin, d.stderr)
}

// checkWorkDir rejects a --chdir that WorkDir did not see. The directory is
// changed before configuration loads, so only leading flags and the
// environment can set it.
func (d *Dispatcher) checkWorkDir(globalArgs []string, got flags.Values) error {
	src := got.Source("chdir")
	if src != flags.SourceFlag && src != flags.SourceConfig {
		return nil
	}
	early, err := flags.NewParser(d.reg.Global(), nil).Parse(globalArgs)
	if err == nil && early.Global.Changed("chdir") && early.Global.String("chdir") == got.String("chdir") {
		return nil
	}
	return clierr.InvalidFlagValue("chdir", got.String("chdir"), src.String(),
		errors.New("--chdir must come before the command name, or be set with STACKWRAP_CHDIR"))
}

func (d *Dispatcher) run(ctx context.Context, prep *Prepared) error {
	inv := prep.Invocation
	g := inv.Global

	if _, err := logging.ParseLevel(g.String("logs-level")); err != nil {
		return clierr.InvalidFlagValue("logs-level", g.String("logs-level"), g.Source("logs-level").String(), err)
	}
	logger, closeLog, err := logging.Setup(logging.Options{
		Level: g.String("logs-level"),
		File:  g.String("logs-file"),
	}, d.stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	logger = logger.With("invocation", inv.ID, "command", inv.CommandPath())
	ctx = logging.WithLogger(ctx, logger)
	logger.Debug("running command",
		"positional", inv.Positional,
		"separated", inv.Separated,
		"rewritten", inv.Rewritten,
	)

	err = prep.Entry.Provider.Run(ctx, inv)
	logger.Debug("command finished", "duration", time.Since(inv.StartedAt), "err", err)
	return err
}

func (d *Dispatcher) defaults(path string) map[string]any {
	if d.config == nil {
		return nil
	}
	return d.config.FlagDefaults(path)
}

// plain reports whether output must be free of ANSI styling.
func (d *Dispatcher) plain(noColor bool) bool {
	return noColor || !d.tty || os.Getenv("NO_COLOR") != ""
}

func (d *Dispatcher) helpOptions(plain bool) help.Options {
	return help.Options{
		Plain:    plain,
		Markdown: d.tty && !plain,
		Width:    d.width,
		Version:  d.version,
	}
}
