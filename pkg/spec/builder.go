package spec

import "strings"

// Builder assembles a Config programmatically. The model is two-phase:
// templates and replacements are declared first, then Build freezes the
// result. Builder methods called after Build return an error so generation
// can never observe a still-mutable configuration.
type Builder struct {
	cfg   Config
	names map[string]*TemplateBuilder
	built bool
}

// TemplateBuilder accumulates replacements for one template definition.
type TemplateBuilder struct {
	parent   *Builder
	index    int
	repNames map[string]struct{}
}

func NewBuilder() *Builder {
	return &Builder{names: map[string]*TemplateBuilder{}}
}

// Template registers a new template definition under a unique name.
func (b *Builder) Template(name, templatePath, outputDir, outputFilePattern string) (*TemplateBuilder, error) {
	if b.built {
		return nil, &InvalidConfigError{Template: name, Reason: "configuration already built"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &InvalidConfigError{Reason: "template name must not be blank"}
	}
	if _, ok := b.names[name]; ok {
		return nil, &DuplicateNameError{Kind: "template", Name: name}
	}
	b.cfg.Templates = append(b.cfg.Templates, Template{
		Name:              name,
		TemplatePath:      templatePath,
		OutputDir:         outputDir,
		OutputFilePattern: outputFilePattern,
	})
	tb := &TemplateBuilder{
		parent:   b,
		index:    len(b.cfg.Templates) - 1,
		repNames: map[string]struct{}{},
	}
	b.names[name] = tb
	return tb, nil
}

// WithRoots sets the resources and output roots resolved against by the
// runner's default resolvers.
func (b *Builder) WithRoots(resourcesRoot, outputRoot string) *Builder {
	b.cfg.ResourcesRoot = resourcesRoot
	b.cfg.OutputRoot = outputRoot
	return b
}

// Replacement appends a named replacement. The name is mandatory and must be
// unique within the template: a duplicate would silently overwrite its
// sibling's output file.
func (t *TemplateBuilder) Replacement(name string, placeholders map[string]string) error {
	if t.parent.built {
		return &InvalidConfigError{Template: t.templateName(), Reason: "configuration already built"}
	}
	if strings.TrimSpace(name) == "" {
		return &InvalidConfigError{Template: t.templateName(), Reason: "replacement name must not be blank"}
	}
	if _, ok := t.repNames[name]; ok {
		return &DuplicateNameError{Kind: "replacement", Name: name, Template: t.templateName()}
	}
	t.repNames[name] = struct{}{}
	ph := make(map[string]string, len(placeholders))
	for k, v := range placeholders {
		ph[k] = v
	}
	tpl := &t.parent.cfg.Templates[t.index]
	tpl.Replacements = append(tpl.Replacements, Replacement{Name: name, Placeholders: ph})
	return nil
}

// ReplacementMap is the convenience form: a flat key/value mapping whose
// "name" entry names the replacement and whose remaining entries are
// placeholders.
func (t *TemplateBuilder) ReplacementMap(m map[string]string) error {
	name, ok := m[NameKey]
	if !ok || strings.TrimSpace(name) == "" {
		return &InvalidConfigError{Template: t.templateName(), Reason: "replacement map has no name entry"}
	}
	placeholders := make(map[string]string, len(m)-1)
	for k, v := range m {
		if k == NameKey {
			continue
		}
		placeholders[k] = v
	}
	return t.Replacement(name, placeholders)
}

// Sources attaches shared placeholder value sources to the template.
func (t *TemplateBuilder) Sources(s Sources) error {
	if t.parent.built {
		return &InvalidConfigError{Template: t.templateName(), Reason: "configuration already built"}
	}
	cp := s
	t.parent.cfg.Templates[t.index].Sources = &cp
	return nil
}

func (t *TemplateBuilder) templateName() string {
	return t.parent.cfg.Templates[t.index].Name
}

// Build freezes the configuration and returns it. Further builder calls
// fail.
func (b *Builder) Build() (*Config, error) {
	if b.built {
		return nil, &InvalidConfigError{Reason: "configuration already built"}
	}
	if err := validate(&b.cfg); err != nil {
		return nil, err
	}
	b.built = true
	cfg := b.cfg
	return &cfg, nil
}

func validate(cfg *Config) error {
	for _, tpl := range cfg.Templates {
		if strings.TrimSpace(tpl.TemplatePath) == "" {
			return &InvalidConfigError{Template: tpl.Name, Reason: "template path is required"}
		}
		if strings.TrimSpace(tpl.OutputDir) == "" {
			return &InvalidConfigError{Template: tpl.Name, Reason: "output_dir is required"}
		}
		if strings.TrimSpace(tpl.OutputFilePattern) == "" {
			return &InvalidConfigError{Template: tpl.Name, Reason: "output_file pattern is required"}
		}
	}
	return nil
}
