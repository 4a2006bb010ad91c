package command

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/compat"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

// maxSuggestDistance bounds "did you mean" candidates.
const maxSuggestDistance = 2

// Entry is a registered provider with its validated compatibility map.
type Entry struct {
	Provider Provider
	Compat   *compat.Map
	// Path is the full command path, e.g. ["terraform", "plan"].
	Path []string
	// Children is set for Parent providers.
	Children *Registry
}

// CommandPath joins Path with spaces.
func (e *Entry) CommandPath() string {
	return strings.Join(e.Path, " ")
}

// Registry maps command names to providers. It is filled by an explicit
// startup routine and becomes read-only after Activate.
type Registry struct {
	global  *flags.Builder
	prefix  []string
	entries map[string]*Entry
	order   []string
	active  bool
}

// Group is one help section.
type Group struct {
	ID    string
	Names []string
}

// NewRegistry returns an empty registry. global holds the flags every
// command accepts.
func NewRegistry(global *flags.Builder) *Registry {
	if global == nil {
		global = flags.NewBuilder()
	}
	return &Registry{global: global, entries: make(map[string]*Entry)}
}

// Global returns the flags shared by all commands.
func (r *Registry) Global() *flags.Builder {
	return r.global
}

// Register adds p. It fails on a duplicate name, an invalid compatibility
// map, or when the registry is already active.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("register: nil provider")
	}
	name := p.Name()
	if r.active {
		return clierr.RegistrationAfterActivation(r.pathOf(name))
	}
	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t=") {
		return fmt.Errorf("register: invalid command name %q", name)
	}
	if _, dup := r.entries[name]; dup {
		return clierr.DuplicateRegistration(r.pathOf(name))
	}

	cm, err := compat.NewMap(p.Flags(), p.CompatibilityFlags(), r.global)
	if err != nil {
		return fmt.Errorf("register %s: %w", r.pathOf(name), err)
	}
	entry := &Entry{
		Provider: p,
		Compat:   cm,
		Path:     append(slices.Clone(r.prefix), name),
	}

	if parent, ok := p.(Parent); ok {
		children := &Registry{
			global:  r.global,
			prefix:  entry.Path,
			entries: make(map[string]*Entry),
		}
		for _, child := range parent.Subcommands() {
			if err := children.Register(child); err != nil {
				return err
			}
		}
		entry.Children = children
	}

	r.entries[name] = entry
	r.order = append(r.order, name)
	slog.Debug("registered command", "command", entry.CommandPath(), "group", p.Group())
	return nil
}

func (r *Registry) pathOf(name string) string {
	return strings.Join(append(slices.Clone(r.prefix), name), " ")
}

// Activate freezes the registry and all nested registries. Calling it again
// is a no-op.
func (r *Registry) Activate() error {
	if r.active {
		return nil
	}
	for _, name := range r.order {
		if children := r.entries[name].Children; children != nil {
			if err := children.Activate(); err != nil {
				return err
			}
		}
	}
	r.active = true
	return nil
}

// Active reports whether Activate ran.
func (r *Registry) Active() bool {
	return r.active
}

// Len returns the number of top-level entries.
func (r *Registry) Len() int {
	return len(r.order)
}

// Lookup finds a registered command by name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names lists command names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Entries lists entries in registration order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Groups returns help sections. Known groups come first in a fixed order,
// the rest sorted by id; names keep registration order.
func (r *Registry) Groups() []Group {
	byID := make(map[string][]string)
	for _, name := range r.order {
		id := r.entries[name].Provider.Group()
		byID[id] = append(byID[id], name)
	}

	var groups []Group
	for _, id := range groupOrder {
		if names, ok := byID[id]; ok {
			groups = append(groups, Group{ID: id, Names: names})
			delete(byID, id)
		}
	}
	rest := make([]string, 0, len(byID))
	for id := range byID {
		rest = append(rest, id)
	}
	sort.Strings(rest)
	for _, id := range rest {
		groups = append(groups, Group{ID: id, Names: byID[id]})
	}
	return groups
}

// Suggest returns registered names within a small edit distance of name,
// closest first.
func (r *Registry) Suggest(name string) []string {
	type candidate struct {
		name string
		dist int
	}
	var found []candidate
	for _, n := range r.order {
		d := levenshtein.Distance(name, n, nil)
		if d <= maxSuggestDistance || strings.HasPrefix(n, name) && name != "" {
			found = append(found, candidate{n, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].dist < found[j].dist })
	out := make([]string, 0, len(found))
	for _, c := range found {
		out = append(out, c.name)
	}
	return out
}

// Resolve walks args to the deepest matching command and returns it with
// the arguments that follow the command path. A Parent is returned as is
// when the next token is missing or a flag; the caller decides whether that
// is a help request or a missing subcommand.
func (r *Registry) Resolve(args []string) (*Entry, []string, error) {
	if len(args) == 0 {
		return nil, nil, clierr.UnknownCommand("", nil, r.Names())
	}
	entry, ok := r.Lookup(args[0])
	if !ok {
		return nil, nil, clierr.UnknownCommand(r.pathOf(args[0]), r.Suggest(args[0]), r.Names())
	}
	rest := args[1:]
	if entry.Children == nil || len(rest) == 0 || flags.IsFlagToken(rest[0]) {
		return entry, rest, nil
	}
	return entry.Children.Resolve(rest)
}

// MissingSubcommand is the error for a Parent invoked without a subcommand.
func MissingSubcommand(e *Entry) error {
	var valid []string
	if e.Children != nil {
		valid = e.Children.Names()
	}
	return errNoSubcommand(e.CommandPath(), valid...)
}

func errNoSubcommand(path string, valid ...string) error {
	return clierr.UnknownCommand(path+" <subcommand>", nil, valid)
}
