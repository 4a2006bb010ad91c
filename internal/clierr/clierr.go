// Package clierr defines the error taxonomy shared by the flag parser,
// the command registry and the dispatcher, and maps errors to exit codes.
package clierr

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrUnknownCommand                  = errors.New("unknown command")
	ErrUnknownFlag                     = errors.New("unknown flag")
	ErrInvalidFlagValue                = errors.New("invalid flag value")
	ErrMissingRequiredValue            = errors.New("missing required value")
	ErrInvalidPositionalArgs           = errors.New("invalid positional arguments")
	ErrDuplicateRegistration           = errors.New("duplicate registration")
	ErrConflictingCompatibilityMapping = errors.New("conflicting compatibility mapping")
	ErrRegistrationAfterActivation     = errors.New("registration after activation")
)

// Exit codes. Execution failures use 1; the rest follow sysexits.h where a
// code exists.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 64
	ExitSoftware    = 70
	ExitNotFound    = 127
	maxPassthrough  = 255
	hintListMaxSize = 12
)

// UnknownCommand reports a command name that did not resolve. Suggestions
// and the valid names end up as hints.
func UnknownCommand(name string, suggestions, valid []string) error {
	err := errors.Mark(errors.Newf("%s %q", ErrUnknownCommand.Error(), name), ErrUnknownCommand)
	if len(suggestions) > 0 {
		err = errors.WithHintf(err, "Did you mean %s?", quoteJoin(suggestions, " or "))
	}
	if len(valid) > 0 {
		err = errors.WithHintf(err, "Available commands: %s", shortList(valid))
	}
	return err
}

// UnknownFlag reports a flag token no spec or compatibility entry knows.
func UnknownFlag(token string, valid []string) error {
	err := errors.Mark(errors.Newf("%s %q", ErrUnknownFlag.Error(), token), ErrUnknownFlag)
	if len(valid) > 0 {
		err = errors.WithHintf(err, "Valid flags: %s", shortList(valid))
	}
	return err
}

// InvalidFlagValue reports a raw value that could not be coerced to the
// flag's kind. source names where the value came from (flag, env, config).
func InvalidFlagValue(flag, raw, source string, cause error) error {
	msg := fmt.Sprintf("invalid value %q for flag --%s", raw, flag)
	if source != "" && source != "flag" {
		msg += " (from " + source + ")"
	}
	err := errors.Mark(errors.Newf("%s", msg), ErrInvalidFlagValue)
	if cause != nil {
		err = errors.WithHintf(err, "%s", cause.Error())
	}
	return err
}

// MissingRequiredValue reports a value-taking flag with nothing to consume.
func MissingRequiredValue(flag string) error {
	return errors.Mark(errors.Newf("flag %q needs a value", flag), ErrMissingRequiredValue)
}

// InvalidPositionalArgs reports a positional contract violation.
func InvalidPositionalArgs(command, reason string) error {
	err := errors.Mark(errors.Newf("%s: %s", command, reason), ErrInvalidPositionalArgs)
	return errors.WithHintf(err, "Run 'stackwrap %s --help' for usage.", command)
}

// DuplicateRegistration reports a provider name registered twice.
func DuplicateRegistration(name string) error {
	return errors.Mark(errors.Newf("command %q is already registered", name), ErrDuplicateRegistration)
}

// RegistrationAfterActivation reports a Register call on a frozen registry.
func RegistrationAfterActivation(name string) error {
	return errors.Mark(errors.Newf("cannot register %q: registry is already active", name), ErrRegistrationAfterActivation)
}

// ConflictingCompatibilityMapping reports an invalid compatibility entry.
func ConflictingCompatibilityMapping(key, reason string) error {
	return errors.Mark(errors.Newf("compatibility alias %q %s", key, reason), ErrConflictingCompatibilityMapping)
}

// Hints returns every hint attached to err, outermost first.
func Hints(err error) []string {
	return errors.GetAllHints(err)
}

type exitCoder interface {
	ExitCode() int
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUnknownCommand):
		return ExitNotFound
	case errors.Is(err, ErrUnknownFlag),
		errors.Is(err, ErrInvalidFlagValue),
		errors.Is(err, ErrMissingRequiredValue),
		errors.Is(err, ErrInvalidPositionalArgs):
		return ExitUsage
	case errors.Is(err, ErrDuplicateRegistration),
		errors.Is(err, ErrConflictingCompatibilityMapping),
		errors.Is(err, ErrRegistrationAfterActivation):
		return ExitSoftware
	}

	var ec exitCoder
	if errors.As(err, &ec) {
		code := ec.ExitCode()
		switch {
		case code <= 0, code > maxPassthrough, reserved(code):
			return ExitFailure
		default:
			return code
		}
	}
	return ExitFailure
}

// IsUsage reports whether err is caused by the caller's input rather than
// by the command itself.
func IsUsage(err error) bool {
	code := ExitCode(err)
	return code == ExitUsage || code == ExitNotFound
}

func reserved(code int) bool {
	return code == ExitUsage || code == ExitSoftware || code == ExitNotFound
}

var (
	errorLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Print writes err and its hints to w. Styling is dropped when plain is set.
func Print(w io.Writer, err error, plain bool) {
	if err == nil {
		return
	}
	label := "Error:"
	if !plain {
		label = errorLabel.Render(label)
	}
	fmt.Fprintf(w, "%s %s\n", label, err.Error())
	for _, h := range Hints(err) {
		if !plain {
			h = hintStyle.Render(h)
		}
		fmt.Fprintf(w, "  %s\n", h)
	}
}

func quoteJoin(items []string, sep string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, sep)
}

func shortList(items []string) string {
	if len(items) <= hintListMaxSize {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:hintListMaxSize], ", ") + fmt.Sprintf(", ... (%d more)", len(items)-hintListMaxSize)
}
