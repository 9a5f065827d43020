package cmds

import (
	"context"
	"fmt"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/template-fanout/pkg/expand"
	"github.com/go-go-golems/template-fanout/pkg/output"
	"github.com/go-go-golems/template-fanout/pkg/plan"
	"github.com/go-go-golems/template-fanout/pkg/runner"
	"github.com/go-go-golems/template-fanout/pkg/spec"
	"github.com/go-go-golems/template-fanout/pkg/values"
	"github.com/go-go-golems/template-fanout/pkg/vaultlayer"
)

type ProcessCommand struct{ *gcmds.CommandDescription }

type ProcessSettings struct {
	Config          string   `glazed.parameter:"config"`
	ResourcesRoot   string   `glazed.parameter:"resources-root"`
	OutputRoot      string   `glazed.parameter:"output-root"`
	DryRun          bool     `glazed.parameter:"dry-run"`
	ContinueOnError bool     `glazed.parameter:"continue-on-error"`
	Strict          bool     `glazed.parameter:"strict"`
	Templates       []string `glazed.parameter:"templates"`
	Replacements    []string `glazed.parameter:"replacements"`
	NoColor         bool     `glazed.parameter:"no-color"`
}

func NewProcessCommand() (*ProcessCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}

	cd := gcmds.NewCommandDescription(
		"process",
		gcmds.WithShort("Generate all files declared in a fan-out YAML config"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("config", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("c"), parameters.WithHelp("Fan-out YAML file")),
			parameters.NewParameterDefinition("resources-root", parameters.ParameterTypeString, parameters.WithHelp("Override the resources root template paths resolve against")),
			parameters.NewParameterDefinition("output-root", parameters.ParameterTypeString, parameters.WithHelp("Override the output root generated files resolve against")),
			parameters.NewParameterDefinition("dry-run", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Resolve and expand without writing files")),
			parameters.NewParameterDefinition("continue-on-error", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Keep processing remaining templates after a failure")),
			parameters.NewParameterDefinition("strict", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Fail on ${key} tokens with no configured value")),
			parameters.NewParameterDefinition("templates", parameters.ParameterTypeStringList, parameters.WithHelp("Only process templates with these names; default all")),
			parameters.NewParameterDefinition("replacements", parameters.ParameterTypeStringList, parameters.WithHelp("Only process replacements with these names; default all")),
			parameters.NewParameterDefinition("no-color", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Disable colored console output")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := vaultlayer.AddVaultLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &ProcessCommand{cd}, nil
}

func (c *ProcessCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &ProcessSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	output.InitConsole(s.NoColor)

	cfg, err := spec.LoadFile(s.Config)
	if err != nil {
		return err
	}
	cfg = filterConfig(cfg, s.Templates, s.Replacements)
	if s.ResourcesRoot != "" {
		cfg.ResourcesRoot = s.ResourcesRoot
	}
	if s.OutputRoot != "" {
		cfg.OutputRoot = s.OutputRoot
	}

	p, err := plan.Build(cfg)
	if err != nil {
		return err
	}

	var vaultClient values.VaultReader
	if hasVaultSource(cfg) {
		vs, err := vaultlayer.GetVaultSettings(parsed)
		if err != nil {
			return err
		}
		client, err := vaultlayer.Connect(ctx, vs)
		if err != nil {
			return err
		}
		vaultClient = client
	}

	missing := expand.MissingKeep
	if s.Strict {
		missing = expand.MissingError
	}

	result, err := runner.Execute(ctx, p, runner.DirResolvers(cfg.ResourcesRoot, cfg.OutputRoot), runner.Options{
		DryRun:          s.DryRun,
		ContinueOnError: s.ContinueOnError,
		Missing:         missing,
		Vault:           vaultClient,
		Console:         true,
	})
	if err != nil {
		return err
	}

	if s.DryRun {
		fmt.Printf("\nDry run: %d file(s) would be generated from %d template(s)\n", len(result.Generated), len(result.Summaries))
	} else {
		fmt.Printf("\n✓ Generated %d file(s) from %d template(s)\n", len(result.Generated), len(result.Summaries))
	}
	return nil
}

var _ gcmds.BareCommand = &ProcessCommand{}
