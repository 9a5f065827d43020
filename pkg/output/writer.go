package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// WriteOptions controls how generated content is written.
type WriteOptions struct {
	// Perm is the file mode for created files; zero means 0644.
	Perm os.FileMode
}

var outputLocks = struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}{locks: make(map[string]*sync.Mutex)}

func lockForPath(path string) func() {
	outputLocks.mu.Lock()
	m, ok := outputLocks.locks[path]
	if !ok {
		m = &sync.Mutex{}
		outputLocks.locks[path] = m
	}
	outputLocks.mu.Unlock()
	m.Lock()
	return func() { m.Unlock() }
}

// Write writes content to path, creating parent directories as needed. A
// path of "-" prints to stdout. An existing regular file is overwritten with
// a warning; generation is idempotent, so a rerun rewriting its own outputs
// is the normal case.
func Write(path string, content []byte, opts WriteOptions) error {
	if path == "-" {
		fmt.Print(string(content))
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	unlock := lockForPath(path)
	defer unlock()

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		log.Warn().Str("path", path).Msg("overwriting existing file")
	}

	perm := opts.Perm
	if perm == 0 {
		perm = 0644
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("failed to write output to %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}
