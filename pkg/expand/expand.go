package expand

import (
	"fmt"
	"os"
	"strings"
)

// MissingMode controls what happens to ${key} tokens whose key has no
// configured value.
type MissingMode int

const (
	// MissingKeep leaves unresolved tokens verbatim in the output. Generated
	// manifests may legitimately contain ${...} strings meant for a later
	// consumer (e.g. Envoy runtime substitution).
	MissingKeep MissingMode = iota
	// MissingError fails the expansion, naming the unresolved key.
	MissingError
)

// Expand substitutes ${identifier} tokens in content against mapping. All
// other content passes through byte-for-byte: a lone '$', a '${' without a
// closing brace, an empty '${}' and identifiers with characters outside
// [A-Za-z0-9_.-] are not tokens and are left untouched.
func Expand(content string, mapping map[string]string, mode MissingMode) (string, error) {
	if !strings.Contains(content, "${") {
		return content, nil
	}
	var b strings.Builder
	b.Grow(len(content))
	for {
		start := strings.Index(content, "${")
		if start < 0 {
			b.WriteString(content)
			return b.String(), nil
		}
		b.WriteString(content[:start])
		rest := content[start:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		key := rest[2:end]
		if !validIdentifier(key) {
			// not a token; emit "${" and rescan from the key so nested
			// openings like "${${x}" still resolve
			b.WriteString("${")
			content = rest[2:]
			continue
		}
		if value, ok := mapping[key]; ok {
			b.WriteString(value)
		} else {
			if mode == MissingError {
				return "", fmt.Errorf("no value configured for token ${%s}", key)
			}
			b.WriteString(rest[:end+1])
		}
		content = rest[end+1:]
	}
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '.' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// File is the copy-with-expansion primitive: read src, substitute, write dst.
func File(src, dst string, mapping map[string]string, mode MissingMode, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	expanded, err := Expand(string(data), mapping, mode)
	if err != nil {
		return fmt.Errorf("failed to expand %s: %w", src, err)
	}
	return os.WriteFile(dst, []byte(expanded), perm)
}

// Tokens returns the distinct ${identifier} keys referenced by content, in
// first-appearance order. Used by validate to cross-check templates against
// declared placeholders.
func Tokens(content string) []string {
	var keys []string
	seen := map[string]struct{}{}
	for {
		start := strings.Index(content, "${")
		if start < 0 {
			return keys
		}
		rest := content[start:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return keys
		}
		key := rest[2:end]
		if !validIdentifier(key) {
			content = rest[2:]
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		content = rest[end+1:]
	}
}
