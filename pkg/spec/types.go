package spec

// Config is the fully assembled fan-out configuration. It is produced either
// by the Builder or by loading a YAML document, and is frozen before the
// planner ever sees it: nothing mutates a Config after Build/Load returns.
type Config struct {
	ResourcesRoot string     `yaml:"resources_root,omitempty"`
	OutputRoot    string     `yaml:"output_root,omitempty"`
	Templates     []Template `yaml:"templates"`
}

// Template describes one source template and the replacements fanned out
// from it. Replacement order is preserved so unit enumeration is
// deterministic.
type Template struct {
	Name              string        `yaml:"name"`
	TemplatePath      string        `yaml:"template"`
	OutputDir         string        `yaml:"output_dir"`
	OutputFilePattern string        `yaml:"output_file"`
	Sources           *Sources      `yaml:"sources,omitempty"`
	Replacements      []Replacement `yaml:"replacements"`
}

// Replacement is one named set of placeholder values; each replacement
// yields exactly one generated file.
type Replacement struct {
	Name         string            `yaml:"name"`
	Placeholders map[string]string `yaml:"placeholders,omitempty"`
}

// Sources provides base placeholder values shared by every replacement of a
// template. Replacement-level placeholders win over all of these; among the
// sources themselves, env wins over files wins over vault.
type Sources struct {
	Env   map[string]string `yaml:"env,omitempty"`
	Files map[string]string `yaml:"files,omitempty"`
	Vault string            `yaml:"vault,omitempty"`
}

// NamePattern is the literal token in OutputFilePattern that gets replaced
// by each replacement's name.
const NamePattern = "{name}"

// NameKey is the placeholder key seeded with the replacement name before the
// replacement's own placeholders are overlaid.
const NameKey = "name"
