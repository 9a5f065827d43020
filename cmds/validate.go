package cmds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/template-fanout/pkg/expand"
	"github.com/go-go-golems/template-fanout/pkg/spec"
)

type ValidateCommand struct{ *gcmds.CommandDescription }

type ValidateSettings struct {
	Config        string `glazed.parameter:"config"`
	ResourcesRoot string `glazed.parameter:"resources-root"`
	CheckFiles    bool   `glazed.parameter:"check-files"`
}

func NewValidateCommand() (*ValidateCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"validate",
		gcmds.WithShort("Report configuration defects and template/placeholder mismatches as rows"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("config", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("c"), parameters.WithHelp("Fan-out YAML file")),
			parameters.NewParameterDefinition("resources-root", parameters.ParameterTypeString, parameters.WithHelp("Override the resources root template paths resolve against")),
			parameters.NewParameterDefinition("check-files", parameters.ParameterTypeBool, parameters.WithDefault(true), parameters.WithHelp("Read template files and cross-check ${key} tokens")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	return &ValidateCommand{cd}, nil
}

// RunIntoGlazeProcessor loads the raw YAML without the builder's fail-fast
// validation so every defect in the file is reported, not just the first.
func (c *ValidateCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &ValidateSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}

	data, err := os.ReadFile(s.Config)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg spec.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	resourcesRoot := cfg.ResourcesRoot
	if s.ResourcesRoot != "" {
		resourcesRoot = s.ResourcesRoot
	}

	emit := func(kind, template, replacement, detail string) error {
		return gp.AddRow(ctx, types.NewRow(
			types.MRP("type", kind),
			types.MRP("template", template),
			types.MRP("replacement", replacement),
			types.MRP("detail", detail),
		))
	}

	seenTemplates := map[string]struct{}{}
	for _, tpl := range cfg.Templates {
		if strings.TrimSpace(tpl.Name) == "" {
			if err := emit("blank_template_name", tpl.Name, "", "template has no name"); err != nil {
				return err
			}
		}
		if _, ok := seenTemplates[tpl.Name]; ok {
			if err := emit("duplicate_template", tpl.Name, "", "template name registered twice"); err != nil {
				return err
			}
		}
		seenTemplates[tpl.Name] = struct{}{}

		if !strings.Contains(tpl.OutputFilePattern, spec.NamePattern) {
			if err := emit("pattern_missing_name", tpl.Name, "",
				fmt.Sprintf("pattern %q has no {name}; every replacement writes the same file", tpl.OutputFilePattern)); err != nil {
				return err
			}
		}

		declared := map[string]struct{}{spec.NameKey: {}}
		if tpl.Sources != nil {
			for k := range tpl.Sources.Env {
				declared[k] = struct{}{}
			}
			for k := range tpl.Sources.Files {
				declared[k] = struct{}{}
			}
			// vault keys are dynamic; skip the unbound-token check for them
		}

		seenReps := map[string]struct{}{}
		for _, rep := range tpl.Replacements {
			if strings.TrimSpace(rep.Name) == "" {
				if err := emit("blank_replacement_name", tpl.Name, rep.Name, "replacement has no name"); err != nil {
					return err
				}
				continue
			}
			if _, ok := seenReps[rep.Name]; ok {
				if err := emit("duplicate_replacement", tpl.Name, rep.Name, "two replacements share a name; their outputs collide"); err != nil {
					return err
				}
			}
			seenReps[rep.Name] = struct{}{}
			for k, v := range rep.Placeholders {
				declared[k] = struct{}{}
				if k == spec.NameKey && v != rep.Name {
					if err := emit("name_override", tpl.Name, rep.Name,
						fmt.Sprintf("placeholder 'name' overrides the seeded value with %q", v)); err != nil {
						return err
					}
				}
			}
		}

		if !s.CheckFiles {
			continue
		}
		path := tpl.TemplatePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(resourcesRoot, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if err := emit("template_missing", tpl.Name, "", fmt.Sprintf("cannot read %s: %v", path, err)); err != nil {
				return err
			}
			continue
		}
		tokens := expand.Tokens(string(content))
		usesVault := tpl.Sources != nil && tpl.Sources.Vault != ""
		tokenSet := map[string]struct{}{}
		for _, tok := range tokens {
			tokenSet[tok] = struct{}{}
			if _, ok := declared[tok]; !ok && !usesVault {
				if err := emit("token_unbound", tpl.Name, "",
					fmt.Sprintf("template references ${%s} but no replacement or source declares it", tok)); err != nil {
					return err
				}
			}
		}
		declaredKeys := make([]string, 0, len(declared))
		for key := range declared {
			if key != spec.NameKey {
				declaredKeys = append(declaredKeys, key)
			}
		}
		sort.Strings(declaredKeys)
		for _, key := range declaredKeys {
			if _, ok := tokenSet[key]; !ok {
				if err := emit("placeholder_unused", tpl.Name, "",
					fmt.Sprintf("placeholder %q is declared but the template never references it", key)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &ValidateCommand{}
