package plan

import "github.com/go-go-golems/template-fanout/pkg/spec"

// FileUnit is one file-generation unit of work: read the template, expand it
// with Mapping, write the result as OutputFile under OutputDir. Paths are
// still relative here; the runner resolves them against the configured
// roots.
type FileUnit struct {
	ID           string
	Template     string
	Replacement  string
	TemplatePath string
	OutputDir    string
	OutputFile   string
	Mapping      map[string]string
}

// Aggregate groups all units generated from one template. DependsOn lists
// the unit IDs in declaration order; the runner completes an aggregate only
// after every listed unit, then emits the summary report.
type Aggregate struct {
	ID          string
	Group       string
	Description string
	Template    string
	DependsOn   []string
}

// TemplatePlan pairs a template's aggregate with its file units and the
// shared value sources every unit of the template inherits.
type TemplatePlan struct {
	Aggregate Aggregate
	Sources   *spec.Sources
	Units     []FileUnit
}

// Plan is the full set of work derived from one configuration, in template
// declaration order. The caller wires it into whatever scheduling it has;
// the bundled runner simply executes it front to back.
type Plan struct {
	Templates []TemplatePlan
}

// UnitCount returns the total number of file-generation units in the plan.
func (p *Plan) UnitCount() int {
	n := 0
	for _, tp := range p.Templates {
		n += len(tp.Units)
	}
	return n
}
