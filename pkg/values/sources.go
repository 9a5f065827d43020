package values

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/template-fanout/pkg/spec"
)

// VaultReader reads the key/value pairs stored at a Vault path. Satisfied by
// *Client; tests substitute their own.
type VaultReader interface {
	Read(path string) (map[string]string, error)
}

// Resolve materializes a template's shared placeholder values. Precedence
// within the sources, lowest to highest: vault, then files, then env.
// Replacement-level placeholders are overlaid later by the runner and win
// over everything here.
func Resolve(template string, src *spec.Sources, vault VaultReader) (map[string]string, error) {
	out := map[string]string{}
	if src == nil {
		return out, nil
	}

	if src.Vault != "" {
		if vault == nil {
			return nil, &spec.InvalidConfigError{Template: template, Reason: "vault source configured but no Vault connection available"}
		}
		kv, err := vault.Read(src.Vault)
		if err != nil {
			return nil, fmt.Errorf("template %q: failed to read vault source %s: %w", template, src.Vault, err)
		}
		for k, v := range kv {
			out[k] = v
		}
		log.Debug().Str("template", template).Str("path", src.Vault).Int("keys", len(kv)).Msg("resolved vault source")
	}

	for key, filePath := range src.Files {
		fp := expandHome(filePath)
		content, err := os.ReadFile(fp)
		if err != nil {
			return nil, &spec.InvalidConfigError{Template: template, Reason: fmt.Sprintf("file source for %q: %v", key, err)}
		}
		out[key] = string(content)
	}

	missing := []string{}
	for key, envName := range src.Env {
		if val, ok := os.LookupEnv(envName); ok {
			out[key] = val
		} else {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return nil, &spec.InvalidConfigError{Template: template, Reason: "environment variables not set: " + strings.Join(missing, ", ")}
	}

	return out, nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
