// Package flags declares typed flag specs and parses argv against them with
// explicit flag > environment > config > default precedence.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Kind is the value type of a flag.
type Kind int

// Flag kinds.
const (
	Bool Kind = iota
	String
	StringSlice
	Int
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case String:
		return "string"
	case StringSlice:
		return "strings"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TakesValue reports whether a flag of this kind consumes a value token.
func (k Kind) TakesValue() bool {
	return k != Bool
}

// Spec describes one canonical flag.
type Spec struct {
	Name      string
	Shorthand string
	Kind      Kind
	Default   any
	Usage     string
	// EnvVar is the environment variable bound to the flag, if any.
	EnvVar string
}

// Key returns the long form as typed on the command line.
func (s Spec) Key() string {
	return "--" + s.Name
}

// SpecOption customizes a Spec while it is being added to a Builder.
type SpecOption func(*Spec)

// WithEnv binds the flag to an environment variable.
func WithEnv(name string) SpecOption {
	return func(s *Spec) { s.EnvVar = name }
}

// Builder collects the flag specs of one command. Names and shorthands are
// unique within a builder; adding a duplicate is a programming error and
// panics.
type Builder struct {
	specs   []Spec
	byName  map[string]int
	byShort map[string]int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		byName:  make(map[string]int),
		byShort: make(map[string]int),
	}
}

// WithBool adds a boolean flag.
func (b *Builder) WithBool(name, shorthand string, def bool, usage string, opts ...SpecOption) *Builder {
	return b.Add(Spec{Name: name, Shorthand: shorthand, Kind: Bool, Default: def, Usage: usage}, opts...)
}

// WithString adds a string flag.
func (b *Builder) WithString(name, shorthand, def, usage string, opts ...SpecOption) *Builder {
	return b.Add(Spec{Name: name, Shorthand: shorthand, Kind: String, Default: def, Usage: usage}, opts...)
}

// WithStringSlice adds a repeatable string flag.
func (b *Builder) WithStringSlice(name, shorthand string, def []string, usage string, opts ...SpecOption) *Builder {
	return b.Add(Spec{Name: name, Shorthand: shorthand, Kind: StringSlice, Default: def, Usage: usage}, opts...)
}

// WithInt adds an integer flag.
func (b *Builder) WithInt(name, shorthand string, def int, usage string, opts ...SpecOption) *Builder {
	return b.Add(Spec{Name: name, Shorthand: shorthand, Kind: Int, Default: def, Usage: usage}, opts...)
}

// Add appends spec. It panics on an invalid or duplicate name or shorthand.
func (b *Builder) Add(spec Spec, opts ...SpecOption) *Builder {
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.Name == "" || strings.HasPrefix(spec.Name, "-") || strings.ContainsAny(spec.Name, "= ") {
		panic(fmt.Sprintf("flags: invalid flag name %q", spec.Name))
	}
	if len(spec.Shorthand) > 1 {
		panic(fmt.Sprintf("flags: shorthand %q for --%s must be a single character", spec.Shorthand, spec.Name))
	}
	if _, dup := b.byName[spec.Name]; dup {
		panic(fmt.Sprintf("flags: flag --%s already defined", spec.Name))
	}
	if spec.Shorthand != "" {
		if i, dup := b.byShort[spec.Shorthand]; dup {
			panic(fmt.Sprintf("flags: shorthand -%s for --%s already used by --%s", spec.Shorthand, spec.Name, b.specs[i].Name))
		}
		b.byShort[spec.Shorthand] = len(b.specs)
	}
	spec.Default = normalizeDefault(spec.Kind, spec.Default)
	b.byName[spec.Name] = len(b.specs)
	b.specs = append(b.specs, spec)
	return b
}

// Lookup finds a spec by canonical name (without dashes).
func (b *Builder) Lookup(name string) (Spec, bool) {
	if b == nil {
		return Spec{}, false
	}
	i, ok := b.byName[name]
	if !ok {
		return Spec{}, false
	}
	return b.specs[i], true
}

// LookupShorthand finds a spec by its one-letter shorthand.
func (b *Builder) LookupShorthand(short string) (Spec, bool) {
	if b == nil {
		return Spec{}, false
	}
	i, ok := b.byShort[short]
	if !ok {
		return Spec{}, false
	}
	return b.specs[i], true
}

// LookupKey resolves a command-line key such as "--stack" or "-s".
func (b *Builder) LookupKey(key string) (Spec, bool) {
	switch {
	case strings.HasPrefix(key, "--") && len(key) > 2:
		return b.Lookup(key[2:])
	case strings.HasPrefix(key, "-") && len(key) == 2:
		return b.LookupShorthand(key[1:])
	default:
		return Spec{}, false
	}
}

// Specs returns the specs in insertion order.
func (b *Builder) Specs() []Spec {
	if b == nil {
		return nil
	}
	out := make([]Spec, len(b.specs))
	copy(out, b.specs)
	return out
}

// Len returns the number of specs.
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.specs)
}

// Keys lists every accepted key ("--name" and "-x") in insertion order.
func (b *Builder) Keys() []string {
	var keys []string
	for _, s := range b.Specs() {
		keys = append(keys, s.Key())
		if s.Shorthand != "" {
			keys = append(keys, "-"+s.Shorthand)
		}
	}
	return keys
}

// AddTo defines every spec on fs.
func (b *Builder) AddTo(fs *pflag.FlagSet) {
	for _, s := range b.Specs() {
		if fs.Lookup(s.Name) != nil {
			continue
		}
		usage := s.Usage
		if s.EnvVar != "" {
			usage += fmt.Sprintf(" (env %s)", s.EnvVar)
		}
		switch s.Kind {
		case Bool:
			fs.BoolP(s.Name, s.Shorthand, s.Default.(bool), usage)
		case String:
			fs.StringP(s.Name, s.Shorthand, s.Default.(string), usage)
		case StringSlice:
			fs.StringArrayP(s.Name, s.Shorthand, s.Default.([]string), usage)
		case Int:
			fs.IntP(s.Name, s.Shorthand, s.Default.(int), usage)
		}
	}
}

func normalizeDefault(kind Kind, def any) any {
	switch kind {
	case Bool:
		if v, ok := def.(bool); ok {
			return v
		}
		return false
	case String:
		if v, ok := def.(string); ok {
			return v
		}
		return ""
	case StringSlice:
		if v, ok := def.([]string); ok && v != nil {
			out := make([]string, len(v))
			copy(out, v)
			return out
		}
		return []string{}
	case Int:
		if v, ok := def.(int); ok {
			return v
		}
		return 0
	default:
		panic(fmt.Sprintf("flags: unsupported kind %v", kind))
	}
}
