package cmds

import (
	"github.com/go-go-golems/template-fanout/pkg/cmdutil"
	"github.com/go-go-golems/template-fanout/pkg/spec"
)

// filterConfig narrows a loaded configuration to the selected templates and
// replacements. Empty selectors keep everything. The result is a derived
// copy; the loaded Config itself stays untouched.
func filterConfig(cfg *spec.Config, templates, replacements []string) *spec.Config {
	tplSet := cmdutil.NewSelectorSet(templates)
	repSet := cmdutil.NewSelectorSet(replacements)
	if tplSet.Empty() && repSet.Empty() {
		return cfg
	}

	out := *cfg
	out.Templates = nil
	for _, tpl := range cfg.Templates {
		if !tplSet.Matches(tpl.Name) {
			continue
		}
		tpl.Replacements = cmdutil.Filter(tpl.Replacements, repSet, func(r spec.Replacement) string { return r.Name })
		out.Templates = append(out.Templates, tpl)
	}
	return &out
}

// hasVaultSource reports whether any template in the configuration declares
// a vault value source; a Vault connection is only established when one does.
func hasVaultSource(cfg *spec.Config) bool {
	for _, tpl := range cfg.Templates {
		if tpl.Sources != nil && tpl.Sources.Vault != "" {
			return true
		}
	}
	return false
}
