package cmds

import (
	"context"
	"sort"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"

	"github.com/go-go-golems/template-fanout/pkg/plan"
	"github.com/go-go-golems/template-fanout/pkg/spec"
)

type PlanCommand struct{ *gcmds.CommandDescription }

type PlanSettings struct {
	Config       string   `glazed.parameter:"config"`
	Templates    []string `glazed.parameter:"templates"`
	Replacements []string `glazed.parameter:"replacements"`
	Aggregates   bool     `glazed.parameter:"aggregates"`
}

func NewPlanCommand() (*PlanCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"plan",
		gcmds.WithShort("Show the work units a config would generate, without touching any file"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("config", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("c"), parameters.WithHelp("Fan-out YAML file")),
			parameters.NewParameterDefinition("templates", parameters.ParameterTypeStringList, parameters.WithHelp("Only plan templates with these names; default all")),
			parameters.NewParameterDefinition("replacements", parameters.ParameterTypeStringList, parameters.WithHelp("Only plan replacements with these names; default all")),
			parameters.NewParameterDefinition("aggregates", parameters.ParameterTypeBool, parameters.WithDefault(true), parameters.WithHelp("Include one aggregate row per template")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	return &PlanCommand{cd}, nil
}

func (c *PlanCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &PlanSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}

	cfg, err := spec.LoadFile(s.Config)
	if err != nil {
		return err
	}
	cfg = filterConfig(cfg, s.Templates, s.Replacements)

	p, err := plan.Build(cfg)
	if err != nil {
		return err
	}

	for _, tp := range p.Templates {
		for _, unit := range tp.Units {
			keys := make([]string, 0, len(unit.Mapping))
			for k := range unit.Mapping {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			row := types.NewRow(
				types.MRP("type", "unit"),
				types.MRP("id", unit.ID),
				types.MRP("aggregate", tp.Aggregate.ID),
				types.MRP("template", unit.Template),
				types.MRP("replacement", unit.Replacement),
				types.MRP("source", unit.TemplatePath),
				types.MRP("output_dir", unit.OutputDir),
				types.MRP("output_file", unit.OutputFile),
				types.MRP("placeholders", keys),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
		if s.Aggregates {
			row := types.NewRow(
				types.MRP("type", "aggregate"),
				types.MRP("id", tp.Aggregate.ID),
				types.MRP("template", tp.Aggregate.Template),
				types.MRP("group", tp.Aggregate.Group),
				types.MRP("depends_on", tp.Aggregate.DependsOn),
				types.MRP("units", len(tp.Units)),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &PlanCommand{}
