package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// Include loads path and returns its decoded document.
// On failure it logs a warning and returns false with a nil error.
func (r *RealFunctions) Include(path string) (any, error) {
	return r.include(path, false, false)
}

// IncludeOnce is Include, but returns true without reloading if path was already loaded.
func (r *RealFunctions) IncludeOnce(path string) (any, error) {
	return r.include(path, true, false)
}

// IncludedFiles returns the absolute paths loaded so far, sorted.
func (r *RealFunctions) IncludedFiles() []string {
	return r.includes.paths()
}

// Require loads path and returns its decoded document.
// On failure it returns an error wrapping ErrIncludeFailed.
//
// YAML (.yaml, .yml), TOML (.toml) and JSON (.json) files are decoded; any other file
// is returned as its text.
func (r *RealFunctions) Require(path string) (any, error) {
	return r.include(path, false, true)
}

// RequireOnce is Require, but returns true without reloading if path was already loaded.
func (r *RealFunctions) RequireOnce(path string) (any, error) {
	return r.include(path, true, true)
}

// ResetIncludes forgets which files were loaded, so the once variants load them again.
func (r *RealFunctions) ResetIncludes() {
	r.includes.reset()
}

func (r *RealFunctions) include(path string, once, required bool) (any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return r.includeFailed(path, required, err)
	}

	if once && r.includes.has(abs) {
		return true, nil
	}

	document, err := loadDocument(abs)
	if err != nil {
		return r.includeFailed(path, required, err)
	}

	if r.hook != nil {
		err = r.hook(abs, document)
		if err != nil {
			return r.includeFailed(path, required, err)
		}
	}

	r.includes.mark(abs)
	r.logger.Debug("included", zap.String("path", abs), zap.Bool("once", once))

	return document, nil
}

func (r *RealFunctions) includeFailed(path string, required bool, err error) (any, error) {
	if required {
		return nil, fmt.Errorf("%w: %s: %w", ErrIncludeFailed, path, err)
	}

	r.logger.Warn("include failed", zap.String("path", path), zap.Error(err))

	return false, nil
}

// includeTable tracks which files have been loaded, keyed by absolute path.
// The lock is not held while a file loads, so an include hook may include other files.
type includeTable struct {
	mu     sync.Mutex
	loaded map[string]struct{}
}

func newIncludeTable() *includeTable {
	return &includeTable{loaded: make(map[string]struct{})}
}

func (t *includeTable) has(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.loaded[path]

	return ok
}

func (t *includeTable) mark(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loaded[path] = struct{}{}
}

func (t *includeTable) paths() []string {
	t.mu.Lock()
	paths := make([]string, 0, len(t.loaded))

	for path := range t.loaded {
		paths = append(paths, path)
	}
	t.mu.Unlock()

	sort.Strings(paths)

	return paths
}

func (t *includeTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.loaded)
}

// loadDocument reads path and decodes it according to its extension.
func loadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var document any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &document)
	case ".toml":
		table := make(map[string]any)
		err = toml.Unmarshal(data, &table)
		document = table
	case ".json":
		err = json.Unmarshal(data, &document)
	default:
		return string(data), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return document, nil
}
