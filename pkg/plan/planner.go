package plan

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/template-fanout/pkg/spec"
)

const (
	idPrefix  = "process"
	idSuffix  = "Template"
	planGroup = "template processing"
)

// Build walks a frozen configuration exactly once and derives the work plan:
// one FileUnit per (template, replacement) pair plus one Aggregate per
// template. It is pure; no filesystem access happens here.
func Build(cfg *spec.Config) (*Plan, error) {
	p := &Plan{}
	for _, tpl := range cfg.Templates {
		baseID := idPrefix + capitalize(tpl.Name) + idSuffix
		agg := Aggregate{
			ID:          baseID,
			Group:       planGroup,
			Description: "Processes template " + tpl.TemplatePath + " for all configured replacements",
			Template:    tpl.Name,
		}
		if !strings.Contains(tpl.OutputFilePattern, spec.NamePattern) {
			log.Warn().
				Str("template", tpl.Name).
				Str("pattern", tpl.OutputFilePattern).
				Msg("output_file pattern has no {name}; every replacement writes the same file")
		}

		tp := TemplatePlan{Aggregate: agg, Sources: tpl.Sources}
		for _, rep := range tpl.Replacements {
			// enforced at build time already; re-check before emitting a unit
			if strings.TrimSpace(rep.Name) == "" {
				return nil, &spec.InvalidConfigError{Template: tpl.Name, Reason: "replacement name must not be blank"}
			}
			mapping := map[string]string{spec.NameKey: rep.Name}
			for k, v := range rep.Placeholders {
				if k == spec.NameKey && v != rep.Name {
					log.Warn().
						Str("template", tpl.Name).
						Str("replacement", rep.Name).
						Str("value", v).
						Msg("placeholder 'name' overrides the seeded replacement name")
				}
				mapping[k] = v
			}
			unit := FileUnit{
				ID:           baseID + capitalize(rep.Name),
				Template:     tpl.Name,
				Replacement:  rep.Name,
				TemplatePath: tpl.TemplatePath,
				OutputDir:    tpl.OutputDir,
				OutputFile:   strings.ReplaceAll(tpl.OutputFilePattern, spec.NamePattern, rep.Name),
				Mapping:      mapping,
			}
			tp.Units = append(tp.Units, unit)
			tp.Aggregate.DependsOn = append(tp.Aggregate.DependsOn, unit.ID)
		}
		log.Debug().
			Str("template", tpl.Name).
			Str("aggregate", tp.Aggregate.ID).
			Int("units", len(tp.Units)).
			Msg("planned template")
		p.Templates = append(p.Templates, tp)
	}
	return p, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
