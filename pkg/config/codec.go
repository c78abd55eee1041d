package config

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// YAMLIndent is the indentation used when encoding YAML.
const YAMLIndent = 2

// ErrUnknownFormat is returned by Decode for unsupported file extensions.
var ErrUnknownFormat = errors.New("unknown config file format")

// ToYAML serializes the persistent part of the configuration.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(YAMLIndent)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// ToYAMLWithHeader serializes the configuration after a comment header.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	body, err := c.ToYAML()
	if err != nil || header == "" {
		return body, err
	}
	return []byte(strings.TrimRight(header, "\n") + "\n\n" + string(body)), nil
}

// ToTOML serializes the persistent part of the configuration as TOML.
func (c *Config) ToTOML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg.normalized(), nil
}

// FromTOML parses a configuration from TOML bytes. Keys that do not map to
// a field are reported as an error.
func FromTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			// Rule options are free-form.
			if len(k) > 2 && k[0] == "rules" && k[2] == "options" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("parse toml: unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	return cfg.normalized(), nil
}

// Decode parses data according to the extension of path.
func Decode(path string, data []byte) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FromYAML(data)
	case ".toml":
		return FromTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func (c *Config) normalized() *Config {
	if c.Rules == nil {
		c.Rules = make(map[string]RuleConfig)
	}
	return c
}

// Clone returns a deep copy of the configuration. Nested values inside rule
// options are shared.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Rules = nil
	if c.Rules != nil {
		clone.Rules = make(map[string]RuleConfig, len(c.Rules))
		for id, rc := range c.Rules {
			clone.Rules[id] = rc.Clone()
		}
	}
	clone.Analysis.AssertionsEnabled = cloneBool(c.Analysis.AssertionsEnabled)
	clone.Analysis.NullAnalysis = cloneBool(c.Analysis.NullAnalysis)
	clone.Backups.Enabled = cloneBool(c.Backups.Enabled)
	clone.Extensions = slices.Clone(c.Extensions)
	clone.Ignore = slices.Clone(c.Ignore)
	clone.EnableRules = slices.Clone(c.EnableRules)
	clone.DisableRules = slices.Clone(c.DisableRules)
	clone.FixRules = slices.Clone(c.FixRules)
	return &clone
}

// Clone returns a copy of the rule settings.
func (rc RuleConfig) Clone() RuleConfig {
	out := RuleConfig{
		Enabled: cloneBool(rc.Enabled),
		AutoFix: cloneBool(rc.AutoFix),
		Options: maps.Clone(rc.Options),
	}
	if rc.Severity != nil {
		s := *rc.Severity
		out.Severity = &s
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
