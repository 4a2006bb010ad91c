package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format is a config file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// configFiles lists accepted file names per directory, first match wins.
var configFiles = []struct {
	name   string
	format Format
}{
	{"config.yaml", FormatYAML},
	{"config.yml", FormatYAML},
	{"config.toml", FormatTOML},
	{"config.hcl", FormatHCL},
}

func findConfigFile(dir string) (string, Format) {
	for _, f := range configFiles {
		path := filepath.Join(dir, f.name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, f.format
		}
	}
	return "", ""
}

// decode parses data into a generic map.
func decode(data []byte, filename string, format Format) (map[string]any, error) {
	raw := make(map[string]any)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatHCL:
		return decodeHCL(data, filename)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return raw, nil
}

// decodeHCL reads top-level attributes only:
//
//	logs  = { level = "debug" }
//	flags = { stack = "dev" }
//
// Each value is converted through its JSON form, which YAML reads as is.
func decodeHCL(data []byte, filename string) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	raw := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		js, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		var v any
		if err := yaml.Unmarshal(js, &v); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		raw[name] = v
	}
	return raw, nil
}
