package flags

import (
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alexander-akhmetov/stackwrap/internal/clierr"
)

// Result is the outcome of one Parse call.
type Result struct {
	Global     Values
	Options    Values
	Positional []string
}

// Parser parses argv against a global and a command builder.
type Parser struct {
	global     *Builder
	command    *Builder
	config     map[string]any
	permissive bool
	lookupEnv  func(string) (string, bool)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithConfig supplies persisted values keyed by flag name. They rank below
// environment variables and above defaults.
func WithConfig(values map[string]any) ParserOption {
	return func(p *Parser) { p.config = values }
}

// Permissive keeps unknown flag tokens as positional arguments instead of
// failing.
func Permissive(on bool) ParserOption {
	return func(p *Parser) { p.permissive = on }
}

// NewParser returns a parser. Either builder may be nil. On a name clash the
// command's spec wins.
func NewParser(global, command *Builder, opts ...ParserOption) *Parser {
	if global == nil {
		global = NewBuilder()
	}
	if command == nil {
		command = NewBuilder()
	}
	p := &Parser{global: global, command: command, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Recognized reports whether tok is a key this parser accepts, or the
// end-of-flags marker.
func (p *Parser) Recognized(tok string) bool {
	if tok == "--" {
		return true
	}
	key, _, _ := SplitToken(tok)
	_, _, ok := p.lookup(key)
	return ok
}

func (p *Parser) lookup(key string) (Spec, bool, bool) {
	if s, ok := p.command.LookupKey(key); ok {
		return s, false, true
	}
	if s, ok := p.global.LookupKey(key); ok {
		return s, true, true
	}
	return Spec{}, false, false
}

// Keys lists every key the parser accepts, command flags first.
func (p *Parser) Keys() []string {
	return append(p.command.Keys(), p.global.Keys()...)
}

// Parse consumes args. Explicit values are recorded, then every flag not
// given explicitly is resolved from the environment, config and default in
// that order.
func (p *Parser) Parse(args []string) (*Result, error) {
	globalSet := pflag.NewFlagSet("global", pflag.ContinueOnError)
	commandSet := pflag.NewFlagSet("command", pflag.ContinueOnError)
	p.global.AddTo(globalSet)
	p.command.AddTo(commandSet)

	var positional []string
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !IsFlagToken(tok) {
			positional = append(positional, tok)
			continue
		}

		key, value, inline := SplitToken(tok)
		spec, isGlobal, ok := p.lookup(key)
		if !ok {
			if p.permissive {
				positional = append(positional, tok)
				continue
			}
			return nil, clierr.UnknownFlag(key, p.Keys())
		}

		if !inline {
			switch {
			case !spec.Kind.TakesValue():
				value = "true"
			case i+1 >= len(args) || p.Recognized(args[i+1]):
				return nil, clierr.MissingRequiredValue(key)
			default:
				i++
				value = args[i]
			}
		}

		fs := commandSet
		if isGlobal {
			fs = globalSet
		}
		if err := fs.Set(spec.Name, value); err != nil {
			return nil, clierr.InvalidFlagValue(spec.Name, value, SourceFlag.String(), err)
		}
	}

	global, err := p.resolve(p.global, globalSet)
	if err != nil {
		return nil, err
	}
	options, err := p.resolve(p.command, commandSet)
	if err != nil {
		return nil, err
	}
	return &Result{Global: global, Options: options, Positional: positional}, nil
}

func (p *Parser) resolve(b *Builder, fs *pflag.FlagSet) (Values, error) {
	v := viper.New()
	if len(p.config) > 0 {
		if err := v.MergeConfigMap(p.config); err != nil {
			return Values{}, err
		}
	}

	out := newValues()
	for _, spec := range b.Specs() {
		if fs.Changed(spec.Name) {
			out.set(spec.Name, explicitValue(fs, spec), SourceFlag)
			continue
		}

		v.SetDefault(spec.Name, spec.Default)
		src := SourceDefault
		if _, ok := p.config[spec.Name]; ok {
			src = SourceConfig
		}
		if spec.EnvVar != "" {
			if err := v.BindEnv(spec.Name, spec.EnvVar); err != nil {
				return Values{}, err
			}
			if env, ok := p.lookupEnv(spec.EnvVar); ok && env != "" {
				src = SourceEnv
			}
		}

		raw := v.Get(spec.Name)
		val, err := coerce(spec.Kind, raw, src)
		if err != nil {
			return Values{}, clierr.InvalidFlagValue(spec.Name, cast.ToString(raw), src.String(), err)
		}
		out.set(spec.Name, val, src)
	}
	return out, nil
}

func explicitValue(fs *pflag.FlagSet, spec Spec) any {
	switch spec.Kind {
	case Bool:
		b, _ := fs.GetBool(spec.Name)
		return b
	case Int:
		i, _ := fs.GetInt(spec.Name)
		return i
	case StringSlice:
		s, _ := fs.GetStringArray(spec.Name)
		return s
	default:
		s, _ := fs.GetString(spec.Name)
		return s
	}
}

func coerce(kind Kind, raw any, src Source) (any, error) {
	switch kind {
	case Bool:
		return cast.ToBoolE(raw)
	case Int:
		return cast.ToIntE(raw)
	case StringSlice:
		if s, ok := raw.(string); ok {
			return splitList(s, src), nil
		}
		return cast.ToStringSliceE(raw)
	default:
		return cast.ToStringE(raw)
	}
}

// Environment lists are comma separated; a config string is a single item.
func splitList(s string, src Source) []string {
	if s == "" {
		return []string{}
	}
	if src != SourceEnv {
		return []string{s}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsFlagToken reports whether tok looks like a flag. A lone "-" is an
// argument.
func IsFlagToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}

// SplitToken splits a flag token at its first '='.
func SplitToken(tok string) (key, value string, inline bool) {
	key, value, inline = strings.Cut(tok, "=")
	return key, value, inline
}
