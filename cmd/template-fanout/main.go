package main

import (
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/help"
	help_cmd "github.com/go-go-golems/glazed/pkg/help/cmd"
	"github.com/spf13/cobra"

	clay "github.com/go-go-golems/clay/pkg"

	appcmds "github.com/go-go-golems/template-fanout/cmds"
	appdoc "github.com/go-go-golems/template-fanout/pkg/doc"
)

var version = "dev"

func getMiddlewares(parsedLayers *layers.ParsedLayers, cmd *cobra.Command, args []string) ([]middlewares.Middleware, error) {
	commandSettings := &cli.CommandSettings{}
	err := parsedLayers.InitializeStruct(cli.CommandSettingsSlug, commandSettings)
	if err != nil {
		return nil, err
	}

	mw_ := []middlewares.Middleware{
		middlewares.ParseFromCobraCommand(cmd,
			parameters.WithParseStepSource("cobra"),
		),
		middlewares.GatherArguments(args,
			parameters.WithParseStepSource("arguments"),
		),
	}

	mw_ = append(mw_,
		middlewares.GatherFlagsFromViper(parameters.WithParseStepSource("viper")),
		middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
	)

	return mw_, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "template-fanout",
		Short:   "Generate many manifests from one template and named replacements",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			err := logging.InitLoggerFromViper()
			cobra.CheckErr(err)
		},
	}

	clay.InitViper("template-fanout", rootCmd)

	// Help system
	hs := help.NewHelpSystem()
	_ = appdoc.AddDocToHelpSystem(hs)
	help_cmd.SetupCobraRootCommand(hs, rootCmd)

	opts := []cli.CobraOption{
		cli.WithParserConfig(cli.CobraParserConfig{
			MiddlewaresFunc: getMiddlewares,
		}),
	}

	// Register commands
	if pc, err := appcmds.NewProcessCommand(); err == nil {
		cmd, err := cli.BuildCobraCommand(pc, opts...)
		cobra.CheckErr(err)
		rootCmd.AddCommand(cmd)
	} else {
		cobra.CheckErr(err)
	}

	if plc, err := appcmds.NewPlanCommand(); err == nil {
		cmd, err := cli.BuildCobraCommand(plc, opts...)
		cobra.CheckErr(err)
		rootCmd.AddCommand(cmd)
	} else {
		cobra.CheckErr(err)
	}

	if vc, err := appcmds.NewValidateCommand(); err == nil {
		cmd, err := cli.BuildCobraCommand(vc, opts...)
		cobra.CheckErr(err)
		rootCmd.AddCommand(cmd)
	} else {
		cobra.CheckErr(err)
	}

	if rc, err := appcmds.NewRenderCommand(); err == nil {
		cmd, err := cli.BuildCobraCommand(rc, opts...)
		cobra.CheckErr(err)
		rootCmd.AddCommand(cmd)
	} else {
		cobra.CheckErr(err)
	}

	cobra.CheckErr(rootCmd.Execute())
}
