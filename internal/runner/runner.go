// Package runner executes the wrapped external tool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Command is one external process invocation. Args are passed as discrete
// argv elements, never joined or re-quoted.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is added on top of the current environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Interactive keeps the child in the terminal's foreground process
	// group so it can prompt on stdin.
	Interactive bool
}

// String renders the command for display, quoting arguments with spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Name}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\"'") {
			s = fmt.Sprintf("%q", s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Runner abstracts process execution.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// ExitError carries the exit status of a tool that ran and failed.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// ExitCode returns the tool's exit status.
func (e *ExitError) ExitCode() int { return e.Code }

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// New returns the default runner.
func New() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context already canceled: %w", err)
	}

	// exec.Command, not CommandContext: cancellation is handled below so the
	// whole process group is signalled, not just the direct child.
	cmd := exec.Command(c.Name, c.Args...) //nolint:gosec // name comes from config, args from the user
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	grouped := !c.Interactive
	if grouped {
		setupProcessGroup(cmd)
	}

	log.Debug("starting external command", "cmd", c.String(), "dir", c.Dir)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Name, err)
	}

	cleanup := newProcessCleanup(cmd, grouped, ctx.Done())
	if err := cleanup.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Name: c.Name, Code: exitErr.ExitCode()}
		}
		return err
	}
	return nil
}

// LookPath returns the resolved path of name and whether it was found.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
