package compat

import (
	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
	"github.com/alexander-akhmetov/stackwrap/internal/flags"
)

// Result holds the two outputs of Preprocess.
type Result struct {
	// Args goes to the structured parser.
	Args []string
	// Separated goes to the wrapped tool, verbatim and in order.
	Separated []string
}

// Preprocess rewrites legacy tokens in raw using m. Unmatched tokens are
// copied unchanged so the parser can reject them; everything from "--" on
// is copied as is. A nil map is the identity transform.
func Preprocess(raw []string, m *Map) (Result, error) {
	res := Result{
		Args:      make([]string, 0, len(raw)),
		Separated: []string{},
	}
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		if tok == "--" {
			res.Args = append(res.Args, raw[i:]...)
			break
		}
		if !flags.IsFlagToken(tok) || m == nil {
			res.Args = append(res.Args, tok)
			continue
		}

		key, value, inline := flags.SplitToken(tok)
		e, ok := m.entries[key]
		if !ok {
			// A canonical key never consumes a legacy key, so it is the
			// one missing its value.
			if !inline && m.canonicalTakesValue(key) && i+1 < len(raw) && m.isLegacy(raw[i+1]) {
				return Result{}, clierr.MissingRequiredValue(key)
			}
			res.Args = append(res.Args, tok)
			continue
		}

		consumed := []string{tok}
		if e.takesValue && !inline {
			if i+1 >= len(raw) || m.Recognized(raw[i+1]) {
				return Result{}, clierr.MissingRequiredValue(key)
			}
			i++
			value = raw[i]
			consumed = append(consumed, value)
		}

		switch e.Behavior {
		case DivertToExternal:
			res.Separated = append(res.Separated, consumed...)
		case RewriteToCanonical:
			canonical := "--" + e.Target
			switch {
			case inline:
				res.Args = append(res.Args, canonical+"="+value)
			case e.takesValue:
				res.Args = append(res.Args, canonical, value)
			default:
				res.Args = append(res.Args, canonical)
			}
		}
	}
	return res, nil
}
