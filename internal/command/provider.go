// Package command defines the contract every stackwrap command implements
// and the registry the dispatcher resolves commands from.
package command

import (
	"context"

	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

// Help groups, listed in this order. Unknown group ids follow, sorted.
const (
	GroupInfrastructure = "infrastructure"
	GroupConfiguration  = "configuration"
	GroupUtility        = "utility"
)

var groupOrder = []string{GroupInfrastructure, GroupConfiguration, GroupUtility}

// Provider is a self-describing command. Providers are built once by a
// constructor and not changed after registration.
type Provider interface {
	Name() string
	Group() string
	Short() string
	Flags() *flags.Builder
	Args() flags.PositionalArgs
	CompatibilityFlags() []compat.Flag
	Run(ctx context.Context, inv *Invocation) error
}

// Parent is a provider that groups subcommands. The dispatcher resolves the
// next argv token against them; a parent never runs itself.
type Parent interface {
	Provider
	Subcommands() []Provider
}

// Lenient is implemented by providers that accept unknown flags as
// positional arguments.
type Lenient interface {
	Permissive() bool
}

// Describer adds long help text (markdown) and usage examples.
type Describer interface {
	Long() string
	Example() string
}

// Prompt asks for one missing value on a terminal.
type Prompt struct {
	// Name is a positional argument name, or a canonical flag name when
	// Flag is set.
	Name  string
	Flag  bool
	Title string
	// Choices lists the values to pick from. Nil means free text.
	Choices func() []string
}

// Prompting is implemented by providers that ask for missing values when
// run interactively. Positional prompts run first, in argument order; flag
// prompts only follow a positional prompt and only for empty values.
type Prompting interface {
	Prompts() []Prompt
}

// Base implements every Provider method except Run. Commands embed it.
type Base struct {
	Command    string
	GroupID    string
	Summary    string
	Details    string
	Examples   string
	Options    *flags.Builder
	Positional flags.PositionalArgs
	Legacy     []compat.Flag
}

func (b *Base) Name() string  { return b.Command }
func (b *Base) Group() string { return b.GroupID }
func (b *Base) Short() string { return b.Summary }
func (b *Base) Long() string  { return b.Details }

func (b *Base) Example() string { return b.Examples }

func (b *Base) Flags() *flags.Builder {
	if b.Options == nil {
		b.Options = flags.NewBuilder()
	}
	return b.Options
}

func (b *Base) Args() flags.PositionalArgs { return b.Positional }

func (b *Base) CompatibilityFlags() []compat.Flag { return b.Legacy }

type group struct {
	Base
	children []Provider
}

// NewGroup returns a Parent holding children.
func NewGroup(base Base, children ...Provider) Parent {
	return &group{Base: base, children: children}
}

func (g *group) Subcommands() []Provider { return g.children }

// Run is never reached through the dispatcher, which resolves a subcommand
// first.
func (g *group) Run(context.Context, *Invocation) error {
	return errNoSubcommand(g.Command)
}
