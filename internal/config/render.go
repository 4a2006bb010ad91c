package config

import (
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Render returns the resolved configuration as yaml or json.
func (c *Config) Render(format string) (string, error) {
	switch format {
	case "", "yaml":
		data, err := yaml.Marshal(c)
		if err != nil {
			return "", fmt.Errorf("render yaml: %w", err)
		}
		return string(data), nil
	case "json":
		return c.renderJSON()
	default:
		return "", fmt.Errorf("unsupported format %q (valid: yaml, json)", format)
	}
}

func (c *Config) renderJSON() (string, error) {
	doc := "{}"
	sets := []struct {
		path  string
		value any
	}{
		{"logs.level", c.Logs.Level},
		{"logs.file", c.Logs.File},
		{"flags", nonNilMap(c.Flags)},
		{"commands", c.commandsOrEmpty()},
		{"components.terraform.command", c.Components.Terraform.Command},
		{"components.terraform.base_path", c.Components.Terraform.BasePath},
		{"sources", c.sources},
	}
	var err error
	for _, s := range sets {
		if doc, err = sjson.Set(doc, s.path, s.value); err != nil {
			return "", fmt.Errorf("render json: %w", err)
		}
	}
	return string(pretty.Pretty([]byte(doc))), nil
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func (c *Config) commandsOrEmpty() map[string]map[string]any {
	if c.Commands == nil {
		return map[string]map[string]any{}
	}
	return c.Commands
}
