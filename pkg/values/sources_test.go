package values

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/template-fanout/pkg/spec"
)

type fakeVault struct {
	data map[string]map[string]string
	err  error
}

func (f *fakeVault) Read(path string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[path], nil
}

func TestResolve(t *testing.T) {
	t.Run("nil sources resolve to an empty mapping", func(t *testing.T) {
		out, err := Resolve("tpl", nil, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("env source reads environment variables", func(t *testing.T) {
		t.Setenv("TF_TEST_MESH_VERSION", "1.22")
		out, err := Resolve("tpl", &spec.Sources{
			Env: map[string]string{"meshVersion": "TF_TEST_MESH_VERSION"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "1.22", out["meshVersion"])
	})

	t.Run("missing env var is an InvalidConfigError naming the template", func(t *testing.T) {
		_, err := Resolve("tpl", &spec.Sources{
			Env: map[string]string{"x": "TF_TEST_DEFINITELY_NOT_SET"},
		}, nil)
		var inv *spec.InvalidConfigError
		require.ErrorAs(t, err, &inv)
		assert.Equal(t, "tpl", inv.Template)
		assert.Contains(t, inv.Reason, "TF_TEST_DEFINITELY_NOT_SET")
	})

	t.Run("file source reads file contents", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("PEMDATA"), 0644))

		out, err := Resolve("tpl", &spec.Sources{
			Files: map[string]string{"caBundle": path},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "PEMDATA", out["caBundle"])
	})

	t.Run("unreadable file source fails the template", func(t *testing.T) {
		_, err := Resolve("tpl", &spec.Sources{
			Files: map[string]string{"caBundle": filepath.Join(t.TempDir(), "absent.pem")},
		}, nil)
		var inv *spec.InvalidConfigError
		require.ErrorAs(t, err, &inv)
	})

	t.Run("vault source pulls key value pairs", func(t *testing.T) {
		v := &fakeVault{data: map[string]map[string]string{
			"secret/mesh/defaults": {"gateway": "mesh-gw", "zone": "eu-1"},
		}}
		out, err := Resolve("tpl", &spec.Sources{Vault: "secret/mesh/defaults"}, v)
		require.NoError(t, err)
		assert.Equal(t, "mesh-gw", out["gateway"])
		assert.Equal(t, "eu-1", out["zone"])
	})

	t.Run("vault source without a connection is a config error", func(t *testing.T) {
		_, err := Resolve("tpl", &spec.Sources{Vault: "secret/x"}, nil)
		var inv *spec.InvalidConfigError
		require.ErrorAs(t, err, &inv)
	})

	t.Run("vault read failures propagate", func(t *testing.T) {
		v := &fakeVault{err: errors.New("sealed")}
		_, err := Resolve("tpl", &spec.Sources{Vault: "secret/x"}, v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sealed")
	})

	t.Run("env wins over files wins over vault", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "val")
		require.NoError(t, os.WriteFile(path, []byte("from-file"), 0644))
		t.Setenv("TF_TEST_PRECEDENCE", "from-env")

		v := &fakeVault{data: map[string]map[string]string{
			"secret/p": {"key": "from-vault", "vaultOnly": "v"},
		}}
		out, err := Resolve("tpl", &spec.Sources{
			Vault: "secret/p",
			Files: map[string]string{"key": path},
			Env:   map[string]string{"key": "TF_TEST_PRECEDENCE"},
		}, v)
		require.NoError(t, err)
		assert.Equal(t, "from-env", out["key"])
		assert.Equal(t, "v", out["vaultOnly"])
	})
}
