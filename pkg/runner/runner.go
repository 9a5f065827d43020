package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/template-fanout/pkg/expand"
	"github.com/go-go-golems/template-fanout/pkg/output"
	"github.com/go-go-golems/template-fanout/pkg/plan"
	"github.com/go-go-golems/template-fanout/pkg/spec"
	"github.com/go-go-golems/template-fanout/pkg/values"
)

// Options controls plan execution.
type Options struct {
	// DryRun resolves, expands and reports without writing any file.
	DryRun bool
	// ContinueOnError keeps processing remaining templates after a template
	// fails; the overall run still returns an error.
	ContinueOnError bool
	// Missing selects the behavior for ${key} tokens with no value.
	Missing expand.MissingMode
	// Vault is consulted only for templates declaring a vault source.
	Vault values.VaultReader
	// Console enables human-readable progress output on stdout.
	Console bool
}

// GeneratedFile describes one written (or dry-run) output file.
type GeneratedFile struct {
	Unit        string
	Template    string
	Replacement string
	Path        string
	Bytes       int
}

// TemplateSummary is the aggregate completion report for one template.
type TemplateSummary struct {
	Aggregate    string
	Template     string
	TemplateFile string
	OutputDir    string
	Count        int
}

// Result collects everything a run produced.
type Result struct {
	Generated []GeneratedFile
	Summaries []TemplateSummary
	Failed    []string
}

// Execute runs a plan front to back: for each template, resolve its shared
// value sources, then generate one file per unit in declaration order, then
// emit the aggregate summary. Units write to disjoint paths, so ordering is
// the only dependency the plan encodes. No retries; a failure is a
// configuration or environment defect.
func Execute(ctx context.Context, p *plan.Plan, res Resolvers, opts Options) (*Result, error) {
	result := &Result{}

	for _, tp := range p.Templates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.Console {
			fmt.Print(output.TemplateHeader(tp.Aggregate.Template, tp.Aggregate.Description))
		}
		summary, err := executeTemplate(tp, res, opts, result)
		if err != nil {
			log.Error().Err(err).Str("template", tp.Aggregate.Template).Msg("template processing failed")
			result.Failed = append(result.Failed, tp.Aggregate.Template)
			if !opts.ContinueOnError {
				return result, fmt.Errorf("template %q failed: %w", tp.Aggregate.Template, err)
			}
			continue
		}
		result.Summaries = append(result.Summaries, *summary)
		log.Info().
			Str("aggregate", summary.Aggregate).
			Str("template_file", summary.TemplateFile).
			Str("output_dir", summary.OutputDir).
			Int("replacements", summary.Count).
			Msg("template processed")
		if opts.Console {
			fmt.Println(output.GeneratedCount(summary.Count))
		}
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("processing completed with %d failed template(s) out of %d", len(result.Failed), len(p.Templates))
	}
	return result, nil
}

func executeTemplate(tp plan.TemplatePlan, res Resolvers, opts Options, result *Result) (*TemplateSummary, error) {
	base, err := values.Resolve(tp.Aggregate.Template, tp.Sources, opts.Vault)
	if err != nil {
		return nil, err
	}

	var names []string
	summary := &TemplateSummary{
		Aggregate: tp.Aggregate.ID,
		Template:  tp.Aggregate.Template,
	}

	for _, unit := range tp.Units {
		srcPath, err := res.Resources.ResolveTemplate(unit.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve template path %s: %w", unit.TemplatePath, err)
		}
		dstDir, err := res.Output.ResolveOutputDir(unit.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output dir %s: %w", unit.OutputDir, err)
		}
		summary.TemplateFile = filepath.Base(srcPath)
		summary.OutputDir = dstDir

		data, err := os.ReadFile(srcPath)
		if err != nil {
			return nil, &spec.ResourceNotFoundError{Template: unit.Template, Path: srcPath, Err: err}
		}

		// shared sources first, unit mapping (seeded name + placeholders) wins
		mapping := make(map[string]string, len(base)+len(unit.Mapping))
		for k, v := range base {
			mapping[k] = v
		}
		for k, v := range unit.Mapping {
			mapping[k] = v
		}

		expanded, err := expand.Expand(string(data), mapping, opts.Missing)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", unit.ID, err)
		}

		dstPath := filepath.Join(dstDir, unit.OutputFile)
		log.Debug().
			Str("unit", unit.ID).
			Str("source", srcPath).
			Str("output", dstPath).
			Int("bytes", len(expanded)).
			Bool("dry_run", opts.DryRun).
			Msg("generating file")

		if !opts.DryRun {
			if err := output.Write(dstPath, []byte(expanded), output.WriteOptions{}); err != nil {
				return nil, fmt.Errorf("unit %s: %w", unit.ID, err)
			}
		}

		result.Generated = append(result.Generated, GeneratedFile{
			Unit:        unit.ID,
			Template:    unit.Template,
			Replacement: unit.Replacement,
			Path:        dstPath,
			Bytes:       len(expanded),
		})
		names = append(names, unit.OutputFile)
		summary.Count++
	}

	if opts.Console {
		fmt.Print(output.ListFiles(names))
	}
	return summary, nil
}
