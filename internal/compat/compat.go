// Package compat translates legacy flag syntax before structured parsing.
//
// A Map tells, per legacy key, whether the token is rewritten to a canonical
// long flag or diverted verbatim to the wrapped external tool. Preprocess
// walks argv once, left to right, and never reorders, drops or duplicates a
// token.
package compat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

// Behavior tells what happens to a matched legacy token.
type Behavior int

const (
	// RewriteToCanonical replaces the token with the canonical long flag.
	RewriteToCanonical Behavior = iota
	// DivertToExternal moves the token, and its value, to the separated
	// list forwarded to the wrapped tool.
	DivertToExternal
)

func (b Behavior) String() string {
	if b == DivertToExternal {
		return "divert"
	}
	return "rewrite"
}

// Flag is one compatibility entry.
type Flag struct {
	Key      string
	Behavior Behavior
	// Target is the canonical flag name, without dashes. Rewrite only.
	Target string
	// TakesValue applies to diverted keys; rewritten keys take the kind of
	// their target.
	TakesValue bool
	Usage      string
}

// Rewrite maps a legacy key onto the canonical flag named target.
func Rewrite(key, target string) Flag {
	return Flag{Key: key, Behavior: RewriteToCanonical, Target: target}
}

// Divert forwards a value-taking key to the wrapped tool.
func Divert(key, usage string) Flag {
	return Flag{Key: key, Behavior: DivertToExternal, TakesValue: true, Usage: usage}
}

// DivertSwitch forwards a boolean key to the wrapped tool.
func DivertSwitch(key, usage string) Flag {
	return Flag{Key: key, Behavior: DivertToExternal, Usage: usage}
}

type entry struct {
	Flag
	takesValue bool
}

// Map is a validated set of compatibility entries for one command.
type Map struct {
	entries map[string]entry
	order   []string
	// known holds canonical keys of the command and global builders. They
	// end value consumption the same way legacy keys do.
	known []*flags.Builder
}

// NewMap validates entries against the command's builder and returns the
// map. global builders are only consulted for recognized keys.
func NewMap(command *flags.Builder, entries []Flag, global ...*flags.Builder) (*Map, error) {
	m := &Map{
		entries: make(map[string]entry, len(entries)),
		known:   append([]*flags.Builder{command}, global...),
	}
	for _, f := range entries {
		if err := validKey(f.Key); err != nil {
			return nil, err
		}
		if _, dup := m.entries[f.Key]; dup {
			return nil, clierr.ConflictingCompatibilityMapping(f.Key, "is declared more than once")
		}

		e := entry{Flag: f, takesValue: f.TakesValue}
		switch f.Behavior {
		case RewriteToCanonical:
			if f.Target == "" {
				return nil, clierr.ConflictingCompatibilityMapping(f.Key, "has no canonical target")
			}
			spec, ok := command.Lookup(f.Target)
			if !ok {
				return nil, clierr.ConflictingCompatibilityMapping(f.Key, fmt.Sprintf("references non-existent flag %q", "--"+f.Target))
			}
			e.takesValue = spec.Kind.TakesValue()
		case DivertToExternal:
			if f.Target != "" {
				return nil, clierr.ConflictingCompatibilityMapping(f.Key, "is diverted but names a target")
			}
			if _, ok := command.LookupKey(f.Key); ok {
				return nil, clierr.ConflictingCompatibilityMapping(f.Key, "shadows a canonical flag")
			}
		default:
			return nil, clierr.ConflictingCompatibilityMapping(f.Key, fmt.Sprintf("has unknown behavior %d", int(f.Behavior)))
		}
		m.entries[f.Key] = e
		m.order = append(m.order, f.Key)
	}
	return m, nil
}

func validKey(key string) error {
	switch {
	case !strings.HasPrefix(key, "-") || key == "-" || key == "--":
		return clierr.ConflictingCompatibilityMapping(key, "is not a flag key")
	case strings.ContainsAny(key, "= \t"):
		return clierr.ConflictingCompatibilityMapping(key, "must not contain '=' or spaces")
	}
	return nil
}

// Len returns the number of entries. A nil map has none.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Flags returns the entries in declaration order.
func (m *Map) Flags() []Flag {
	if m == nil {
		return nil
	}
	out := make([]Flag, 0, len(m.order))
	for _, k := range m.order {
		e := m.entries[k]
		f := e.Flag
		f.TakesValue = e.takesValue
		out = append(out, f)
	}
	return out
}

// Keys returns the legacy keys sorted.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := append([]string(nil), m.order...)
	sort.Strings(keys)
	return keys
}

// Lookup returns the entry for key.
func (m *Map) Lookup(key string) (Flag, bool) {
	if m == nil {
		return Flag{}, false
	}
	e, ok := m.entries[key]
	if !ok {
		return Flag{}, false
	}
	f := e.Flag
	f.TakesValue = e.takesValue
	return f, true
}

// Recognized reports whether tok's key is a legacy key, a canonical key of
// the command or global flags, or the end-of-flags marker. A value-taking
// key never consumes a recognized token.
func (m *Map) Recognized(tok string) bool {
	if tok == "--" {
		return true
	}
	if !flags.IsFlagToken(tok) {
		return false
	}
	key, _, _ := flags.SplitToken(tok)
	if m == nil {
		return false
	}
	if _, ok := m.entries[key]; ok {
		return true
	}
	for _, b := range m.known {
		if _, ok := b.LookupKey(key); ok {
			return true
		}
	}
	return false
}

func (m *Map) isLegacy(tok string) bool {
	if !flags.IsFlagToken(tok) {
		return false
	}
	key, _, _ := flags.SplitToken(tok)
	_, ok := m.entries[key]
	return ok
}

func (m *Map) canonicalTakesValue(key string) bool {
	for _, b := range m.known {
		if spec, ok := b.LookupKey(key); ok {
			return spec.Kind.TakesValue()
		}
	}
	return false
}
