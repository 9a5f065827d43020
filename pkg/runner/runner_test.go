package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/template-fanout/pkg/expand"
	"github.com/go-go-golems/template-fanout/pkg/plan"
	"github.com/go-go-golems/template-fanout/pkg/spec"
)

type env struct {
	resources string
	outputs   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		resources: t.TempDir(),
		outputs:   t.TempDir(),
	}
}

func (e *env) writeTemplate(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.resources, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (e *env) readOutput(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.outputs, rel))
	require.NoError(t, err)
	return string(data)
}

func (e *env) resolvers() Resolvers {
	return DirResolvers(e.resources, e.outputs)
}

func destinationRuleConfig(t *testing.T) *spec.Config {
	t.Helper()
	b := spec.NewBuilder()
	tb, err := b.Template("destinationRule", "destination-rule.tmpl.yaml", "routing", "{name}DestinationRule.yaml")
	require.NoError(t, err)
	require.NoError(t, tb.Replacement("serviceA", map[string]string{"from": "v1", "to": "v2"}))
	require.NoError(t, tb.Replacement("serviceB", map[string]string{"from": "v1", "to": "v3"}))
	cfg, err := b.Build()
	require.NoError(t, err)
	return cfg
}

const destinationRuleTemplate = "host: ${name}\nshift: ${from} -> ${to}\n"

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("generates one file per replacement with tokens substituted", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "destination-rule.tmpl.yaml", destinationRuleTemplate)

		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)

		result, err := Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)

		require.Len(t, result.Generated, 2)
		assert.Equal(t, "host: serviceA\nshift: v1 -> v2\n",
			e.readOutput(t, filepath.Join("routing", "serviceADestinationRule.yaml")))
		assert.Equal(t, "host: serviceB\nshift: v1 -> v3\n",
			e.readOutput(t, filepath.Join("routing", "serviceBDestinationRule.yaml")))

		require.Len(t, result.Summaries, 1)
		sum := result.Summaries[0]
		assert.Equal(t, "processDestinationRuleTemplate", sum.Aggregate)
		assert.Equal(t, "destination-rule.tmpl.yaml", sum.TemplateFile)
		assert.Equal(t, 2, sum.Count)
		assert.True(t, filepath.IsAbs(sum.OutputDir))
	})

	t.Run("map-form replacement matches the builder form", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "destination-rule.tmpl.yaml", destinationRuleTemplate)

		b := spec.NewBuilder()
		tb, err := b.Template("destinationRule", "destination-rule.tmpl.yaml", "routing", "{name}DestinationRule.yaml")
		require.NoError(t, err)
		require.NoError(t, tb.ReplacementMap(map[string]string{"name": "serviceC", "from": "v1.0", "to": "v2.0"}))
		cfg, err := b.Build()
		require.NoError(t, err)

		p, err := plan.Build(cfg)
		require.NoError(t, err)
		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)

		assert.Equal(t, "host: serviceC\nshift: v1.0 -> v2.0\n",
			e.readOutput(t, filepath.Join("routing", "serviceCDestinationRule.yaml")))
	})

	t.Run("rerunning with unchanged inputs is byte-identical", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "destination-rule.tmpl.yaml", destinationRuleTemplate)

		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)

		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)
		first := e.readOutput(t, filepath.Join("routing", "serviceADestinationRule.yaml"))

		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)
		second := e.readOutput(t, filepath.Join("routing", "serviceADestinationRule.yaml"))
		assert.Equal(t, first, second)
	})

	t.Run("dry run writes nothing but reports everything", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "destination-rule.tmpl.yaml", destinationRuleTemplate)

		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)

		result, err := Execute(ctx, p, e.resolvers(), Options{DryRun: true})
		require.NoError(t, err)
		assert.Len(t, result.Generated, 2)
		assert.Equal(t, 2, result.Summaries[0].Count)

		_, err = os.Stat(filepath.Join(e.outputs, "routing"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing template file is a ResourceNotFoundError", func(t *testing.T) {
		e := newEnv(t)
		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)

		_, err = Execute(ctx, p, e.resolvers(), Options{})
		var nf *spec.ResourceNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "destinationRule", nf.Template)
	})

	t.Run("unresolved tokens kept by default, fatal under strict", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "destination-rule.tmpl.yaml", "weight: ${weight}\nhost: ${name}\n")

		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)

		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)
		assert.Equal(t, "weight: ${weight}\nhost: serviceA\n",
			e.readOutput(t, filepath.Join("routing", "serviceADestinationRule.yaml")))

		_, err = Execute(ctx, p, e.resolvers(), Options{Missing: expand.MissingError})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "${weight}")
	})

	t.Run("continue-on-error processes remaining templates and still fails", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "good.tmpl", "svc: ${name}\n")

		b := spec.NewBuilder()
		broken, err := b.Template("broken", "missing.tmpl", "out", "{name}.yaml")
		require.NoError(t, err)
		require.NoError(t, broken.Replacement("svcA", nil))
		good, err := b.Template("good", "good.tmpl", "out", "{name}.yaml")
		require.NoError(t, err)
		require.NoError(t, good.Replacement("svcB", nil))
		cfg, err := b.Build()
		require.NoError(t, err)

		p, err := plan.Build(cfg)
		require.NoError(t, err)

		result, err := Execute(ctx, p, e.resolvers(), Options{ContinueOnError: true})
		require.Error(t, err)
		assert.Equal(t, []string{"broken"}, result.Failed)
		assert.Equal(t, "svc: svcB\n", e.readOutput(t, filepath.Join("out", "svcB.yaml")))
	})

	t.Run("without continue-on-error the first failure aborts the run", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "good.tmpl", "svc: ${name}\n")

		b := spec.NewBuilder()
		broken, err := b.Template("broken", "missing.tmpl", "out", "{name}.yaml")
		require.NoError(t, err)
		require.NoError(t, broken.Replacement("svcA", nil))
		good, err := b.Template("good", "good.tmpl", "out", "{name}.yaml")
		require.NoError(t, err)
		require.NoError(t, good.Replacement("svcB", nil))
		cfg, err := b.Build()
		require.NoError(t, err)

		p, err := plan.Build(cfg)
		require.NoError(t, err)

		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(e.outputs, "out", "svcB.yaml"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("shared sources feed every replacement, placeholders win", func(t *testing.T) {
		e := newEnv(t)
		e.writeTemplate(t, "dr.tmpl", "v: ${meshVersion}\nzone: ${zone}\n")
		t.Setenv("TF_TEST_RUNNER_MV", "1.22")

		b := spec.NewBuilder()
		tb, err := b.Template("rule", "dr.tmpl", "out", "{name}.yaml")
		require.NoError(t, err)
		require.NoError(t, tb.Sources(spec.Sources{
			Env: map[string]string{"meshVersion": "TF_TEST_RUNNER_MV", "zone": "TF_TEST_RUNNER_MV"},
		}))
		require.NoError(t, tb.Replacement("svcA", nil))
		require.NoError(t, tb.Replacement("svcB", map[string]string{"zone": "eu-1"}))
		cfg, err := b.Build()
		require.NoError(t, err)

		p, err := plan.Build(cfg)
		require.NoError(t, err)
		_, err = Execute(ctx, p, e.resolvers(), Options{})
		require.NoError(t, err)

		assert.Equal(t, "v: 1.22\nzone: 1.22\n", e.readOutput(t, filepath.Join("out", "svcA.yaml")))
		assert.Equal(t, "v: 1.22\nzone: eu-1\n", e.readOutput(t, filepath.Join("out", "svcB.yaml")))
	})

	t.Run("cancelled context stops before the next template", func(t *testing.T) {
		e := newEnv(t)
		cctx, cancel := context.WithCancel(context.Background())
		cancel()

		p, err := plan.Build(destinationRuleConfig(t))
		require.NoError(t, err)
		result, err := Execute(cctx, p, e.resolvers(), Options{})
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, result.Generated)
	})
}
