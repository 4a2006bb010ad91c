package flags

import (
	"sort"

	"github.com/tidwall/sjson"
)

// Source tells where a resolved flag value came from.
type Source int

// Sources in increasing precedence.
const (
	SourceDefault Source = iota
	SourceConfig
	SourceEnv
	SourceFlag
	// SourcePrompt is a value typed at an interactive prompt.
	SourcePrompt
)

func (s Source) String() string {
	switch s {
	case SourceConfig:
		return "config"
	case SourceEnv:
		return "env"
	case SourceFlag:
		return "flag"
	case SourcePrompt:
		return "prompt"
	default:
		return "default"
	}
}

// Values holds resolved flag values. Once returned by the parser only
// SetPrompted changes it.
type Values struct {
	values  map[string]any
	sources map[string]Source
}

func newValues() Values {
	return Values{values: make(map[string]any), sources: make(map[string]Source)}
}

func (v Values) set(name string, val any, src Source) {
	v.values[name] = val
	v.sources[name] = src
}

// SetPrompted records a value the user gave at an interactive prompt.
func (v Values) SetPrompted(name string, val any) {
	v.set(name, val, SourcePrompt)
}

// Has reports whether name is a known flag.
func (v Values) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

// Bool returns the value of a boolean flag, false if unknown.
func (v Values) Bool(name string) bool {
	b, _ := v.values[name].(bool)
	return b
}

// String returns the value of a string flag, "" if unknown.
func (v Values) String(name string) string {
	s, _ := v.values[name].(string)
	return s
}

// Int returns the value of an integer flag, 0 if unknown.
func (v Values) Int(name string) int {
	i, _ := v.values[name].(int)
	return i
}

// StringSlice returns a copy of a repeatable flag's values.
func (v Values) StringSlice(name string) []string {
	s, _ := v.values[name].([]string)
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Source returns where name's value came from.
func (v Values) Source(name string) Source {
	return v.sources[name]
}

// Changed reports whether name was set explicitly on the command line.
func (v Values) Changed(name string) bool {
	return v.sources[name] == SourceFlag
}

// Names returns the flag names in lexical order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v.values))
	for name := range v.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSON renders the values as an object of {"value": ..., "source": ...}.
func (v Values) JSON() string {
	doc := "{}"
	for _, name := range v.Names() {
		path := escapeKey(name)
		doc, _ = sjson.Set(doc, path+".value", v.values[name])
		doc, _ = sjson.Set(doc, path+".source", v.sources[name].String())
	}
	return doc
}

func escapeKey(name string) string {
	var out []byte
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}
