// Package terraform forwards component commands to terraform, or to a
// compatible executable such as tofu. It does not process stacks: the stack
// name only selects the terraform workspace.
package terraform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/alexander-akhmetov/stackwrap/internal/command"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
	"github.com/alexander-akhmetov/stackwrap/internal/logging"
	"github.com/alexander-akhmetov/stackwrap/internal/runner"
)

// WorkspaceEnv is set to the stack name for every terraform process.
const WorkspaceEnv = "TF_WORKSPACE"

// Options configures the provider.
type Options struct {
	// Command is the executable, "terraform" when empty.
	Command string
	// BasePath is the components directory relative to RootDir.
	BasePath string
	RootDir  string
	Runner   runner.Runner
}

const groupDetails = `Runs terraform for a component directory under ` + "`components.terraform.base_path`" + `.

Legacy single-dash flags such as ` + "`-s`" + ` and ` + "`-dry-run`" + ` are accepted.
Terraform's own flags (` + "`-var`, `-var-file`, `-target`" + `, ...) are passed to
terraform unchanged and in order. Those that terraform init also accepts,
such as ` + "`-no-color`" + `, are passed to the automatic init as well.

On a terminal a missing component is asked for interactively.`

const groupExamples = `  stackwrap terraform plan vpc -s dev -var-file prod.tfvars
  stackwrap terraform apply vpc --stack dev --from-plan
  stackwrap terraform output vpc -s dev -- -json`

// NewProvider returns the terraform command group.
func NewProvider(opts Options) command.Parent {
	if opts.Command == "" {
		opts.Command = "terraform"
	}
	if opts.Runner == nil {
		opts.Runner = runner.New()
	}

	return command.NewGroup(command.Base{
		Command:  "terraform",
		GroupID:  command.GroupInfrastructure,
		Summary:  "Run terraform commands for a component",
		Details:  groupDetails,
		Examples: groupExamples,
	},
		&subcommand{
			Base:      newBase("plan", "Show changes required by the current configuration", withInitFlags(baseFlags()), planFlags()),
			opts:      opts,
			initFirst: true,
		},
		&subcommand{
			Base: newBase("apply", "Create or update infrastructure",
				withInitFlags(baseFlags()).
					WithBool("from-plan", "", false, "Apply the saved plan file instead of planning again").
					WithString("planfile", "", "", "Plan file for --from-plan (default <stack>-<component>.planfile)"),
				applyFlags()),
			opts:        opts,
			initFirst:   true,
			interactive: true,
		},
		&subcommand{
			Base:        newBase("destroy", "Destroy previously-created infrastructure", baseFlags(), destroyFlags()),
			opts:        opts,
			interactive: true,
		},
		&subcommand{
			Base: newBase("init", "Prepare the component directory", baseFlags(), initFlags()),
			opts: opts,
		},
		&subcommand{
			Base: newBase("validate", "Check whether the configuration is valid", baseFlags(), validateFlags()),
			opts: opts,
		},
		&subcommand{
			Base: newBase("output", "Show output values", baseFlags(), outputFlags()),
			opts: opts,
		},
		&subcommand{
			Base: newBase("show", "Show the current state or a saved plan", baseFlags(), showFlags()),
			opts: opts,
		},
	)
}

func newBase(name, summary string, options *flags.Builder, legacy []compat.Flag) command.Base {
	return command.Base{
		Command:    name,
		GroupID:    command.GroupInfrastructure,
		Summary:    summary,
		Options:    options,
		Positional: flags.PositionalArgs{Names: []string{"component"}, Min: 1, Max: flags.Unbounded},
		Legacy:     legacy,
	}
}

func baseFlags() *flags.Builder {
	return flags.NewBuilder().
		WithString("stack", "s", "", "Stack name; selects the terraform workspace", flags.WithEnv("STACKWRAP_STACK")).
		WithBool("dry-run", "", false, "Print the terraform commands instead of running them")
}

func withInitFlags(b *flags.Builder) *flags.Builder {
	return b.WithBool("skip-init", "", false, "Do not run terraform init first")
}

type subcommand struct {
	command.Base
	opts        Options
	initFirst   bool
	interactive bool
}

func (s *subcommand) Run(ctx context.Context, inv *command.Invocation) error {
	logger := logging.FromContext(ctx)

	component := inv.Positional[0]
	dir := filepath.Join(s.opts.RootDir, s.opts.BasePath, component)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.WithHintf(
			errors.Newf("component %q not found: %s is not a directory", component, dir),
			"Components are looked up under components.terraform.base_path (%s).", s.opts.BasePath)
	}

	var env []string
	if stack := inv.Options.String("stack"); stack != "" {
		env = append(env, WorkspaceEnv+"="+stack)
	}

	for _, c := range s.commands(inv, dir, env) {
		if inv.Options.Bool("dry-run") {
			fmt.Fprintf(inv.Stdout, "cd %s && %s\n", dir, strings.TrimSpace(strings.Join(env, " ")+" "+c.String()))
			continue
		}
		logger.Info("running terraform", "cmd", c.String(), "dir", dir)
		if err := s.opts.Runner.Run(ctx, c); err != nil {
			return fmt.Errorf("terraform %s %s: %w", c.Args[0], component, err)
		}
	}
	return nil
}

// Prompts asks for the component, then the stack, when the component is
// missing on a terminal.
func (s *subcommand) Prompts() []command.Prompt {
	return []command.Prompt{
		{Name: "component", Title: "Choose a component", Choices: s.components},
		{Name: "stack", Flag: true, Title: "Stack (empty for the default workspace)"},
	}
}

// components lists the directories under the base path.
func (s *subcommand) components() []string {
	entries, err := os.ReadDir(filepath.Join(s.opts.RootDir, s.opts.BasePath))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out
}

// commands builds the processes to run: an optional init, then the
// subcommand with separated flags first and extra positional arguments
// after them.
func (s *subcommand) commands(inv *command.Invocation, dir string, env []string) []runner.Command {
	newCmd := func(args ...string) runner.Command {
		return runner.Command{
			Name:   s.opts.Command,
			Args:   args,
			Dir:    dir,
			Env:    env,
			Stdin:  inv.Stdin,
			Stdout: inv.Stdout,
			Stderr: inv.Stderr,
		}
	}

	var out []runner.Command
	if s.initFirst && !inv.Options.Bool("skip-init") {
		out = append(out, newCmd(append([]string{"init"}, s.initArgs(inv.Separated)...)...))
	}

	args := append([]string{s.Name()}, inv.Separated...)
	args = append(args, inv.Positional[1:]...)
	if inv.Options.Bool("from-plan") {
		args = append(args, planFile(inv))
	}
	tool := newCmd(args...)
	tool.Interactive = s.interactive
	return append(out, tool)
}

// initArgs picks the separated flags that terraform init also accepts, such
// as -no-color or -lock=false, with their values.
func (s *subcommand) initArgs(separated []string) []string {
	shared := make(map[string]bool)
	for _, f := range initFlags() {
		if f.Behavior == compat.DivertToExternal {
			shared[f.Key] = true
		}
	}
	own := make(map[string]compat.Flag, len(s.Legacy))
	for _, f := range s.Legacy {
		own[f.Key] = f
	}

	var out []string
	for i := 0; i < len(separated); i++ {
		key, _, inline := flags.SplitToken(separated[i])
		n := 1
		if own[key].TakesValue && !inline && i+1 < len(separated) {
			n = 2
		}
		if shared[key] {
			out = append(out, separated[i:i+n]...)
		}
		i += n - 1
	}
	return out
}

// planFile returns --planfile, or <stack>-<component>.planfile with path
// separators flattened.
func planFile(inv *command.Invocation) string {
	if p := inv.Options.String("planfile"); p != "" {
		return p
	}
	name := strings.ReplaceAll(inv.Positional[0], "/", "-")
	if stack := inv.Options.String("stack"); stack != "" {
		name = stack + "-" + name
	}
	return name + ".planfile"
}
