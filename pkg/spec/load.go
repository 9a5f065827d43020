package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses a YAML fan-out configuration and runs it through the builder
// so file-loaded configs get exactly the same validation as programmatic
// ones (blank names, duplicates, missing fields).
func Load(data []byte) (*Config, error) {
	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	b := NewBuilder().WithRoots(raw.ResourcesRoot, raw.OutputRoot)
	for _, tpl := range raw.Templates {
		tb, err := b.Template(tpl.Name, tpl.TemplatePath, tpl.OutputDir, tpl.OutputFilePattern)
		if err != nil {
			return nil, err
		}
		if tpl.Sources != nil {
			if err := tb.Sources(*tpl.Sources); err != nil {
				return nil, err
			}
		}
		for _, rep := range tpl.Replacements {
			if err := tb.Replacement(rep.Name, rep.Placeholders); err != nil {
				return nil, err
			}
		}
	}
	return b.Build()
}

// LoadFile reads and parses a YAML fan-out configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data)
}
