package command

import (
	"io"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

// Invocation is one parsed command line. The dispatcher builds it, passes
// it to Provider.Run and drops it afterwards.
type Invocation struct {
	ID        string
	StartedAt time.Time
	Path      []string
	// Raw is argv after the command path, before compatibility rewriting.
	Raw []string
	// Rewritten is what the structured parser saw.
	Rewritten  []string
	Global     flags.Values
	Options    flags.Values
	Positional []string
	// Separated is forwarded to the wrapped tool unchanged.
	Separated []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewID returns a fresh invocation id.
func NewID() string {
	return uuid.NewString()
}

// CommandPath joins Path with spaces.
func (inv *Invocation) CommandPath() string {
	return strings.Join(inv.Path, " ")
}

// JSON renders the invocation as indented JSON.
func (inv *Invocation) JSON() string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "id", inv.ID)
	doc, _ = sjson.Set(doc, "command", inv.CommandPath())
	doc, _ = sjson.Set(doc, "raw", nonNil(inv.Raw))
	doc, _ = sjson.Set(doc, "rewritten", nonNil(inv.Rewritten))
	doc, _ = sjson.Set(doc, "positional", nonNil(inv.Positional))
	doc, _ = sjson.Set(doc, "separated", nonNil(inv.Separated))
	doc, _ = sjson.SetRaw(doc, "global", inv.Global.JSON())
	doc, _ = sjson.SetRaw(doc, "options", inv.Options.JSON())
	return string(pretty.Pretty([]byte(doc)))
}

// RewriteDiff returns a unified diff between the raw and rewritten argv, one
// token per line. It is empty when nothing was rewritten.
func (inv *Invocation) RewriteDiff() string {
	return udiff.Unified("raw", "rewritten", lines(inv.Raw), lines(inv.Rewritten))
}

func lines(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, "\n") + "\n"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
