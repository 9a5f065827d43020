package cmds

import (
	"context"
	"fmt"
	"os"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/template-fanout/pkg/expand"
	"github.com/go-go-golems/template-fanout/pkg/output"
	"github.com/go-go-golems/template-fanout/pkg/spec"
)

type RenderCommand struct{ *gcmds.CommandDescription }

type RenderSettings struct {
	Template   string   `glazed.parameter:"template"`
	Output     string   `glazed.parameter:"output"`
	Name       string   `glazed.parameter:"name"`
	Set        []string `glazed.parameter:"set"`
	ValuesEnv  []string `glazed.parameter:"values-env"`
	ValuesFile []string `glazed.parameter:"values-file"`
	Strict     bool     `glazed.parameter:"strict"`
}

func NewRenderCommand() (*RenderCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"render",
		gcmds.WithShort("Expand a single template file with ad-hoc values"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("template", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("t"), parameters.WithHelp("Template file path")),
			parameters.NewParameterDefinition("output", parameters.ParameterTypeString, parameters.WithDefault("-"), parameters.WithShortFlag("o"), parameters.WithHelp("Output path or '-' for stdout")),
			parameters.NewParameterDefinition("name", parameters.ParameterTypeString, parameters.WithHelp("Value bound to the ${name} placeholder")),
			parameters.NewParameterDefinition("set", parameters.ParameterTypeStringList, parameters.WithHelp("Placeholder value as key=value (repeatable)")),
			parameters.NewParameterDefinition("values-env", parameters.ParameterTypeStringList, parameters.WithHelp("Placeholder from environment as key=ENV_VAR (repeatable)")),
			parameters.NewParameterDefinition("values-file", parameters.ParameterTypeStringList, parameters.WithHelp("Placeholder from file contents as key=path (repeatable)")),
			parameters.NewParameterDefinition("strict", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Fail on ${key} tokens with no configured value")),
		),
		gcmds.WithLayersList(layer),
	)
	return &RenderCommand{cd}, nil
}

func (c *RenderCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &RenderSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}

	mapping := map[string]string{}
	if s.Name != "" {
		mapping[spec.NameKey] = s.Name
	}
	for _, pair := range s.ValuesFile {
		key, path, err := splitPair(pair, "values-file")
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read value file for %q: %w", key, err)
		}
		mapping[key] = string(content)
	}
	for _, pair := range s.ValuesEnv {
		key, envName, err := splitPair(pair, "values-env")
		if err != nil {
			return err
		}
		val, ok := os.LookupEnv(envName)
		if !ok {
			return fmt.Errorf("environment variable %s for placeholder %q is not set", envName, key)
		}
		mapping[key] = val
	}
	for _, pair := range s.Set {
		key, value, err := splitPair(pair, "set")
		if err != nil {
			return err
		}
		mapping[key] = value
	}

	data, err := os.ReadFile(s.Template)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", s.Template, err)
	}
	mode := expand.MissingKeep
	if s.Strict {
		mode = expand.MissingError
	}
	expanded, err := expand.Expand(string(data), mapping, mode)
	if err != nil {
		return err
	}
	return output.Write(s.Output, []byte(expanded), output.WriteOptions{})
}

func splitPair(pair, flag string) (string, string, error) {
	idx := strings.Index(pair, "=")
	if idx <= 0 {
		return "", "", fmt.Errorf("invalid --%s value %q, expected key=value", flag, pair)
	}
	return pair[:idx], pair[idx+1:], nil
}

var _ gcmds.BareCommand = &RenderCommand{}
