package run

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/toejough/impfunc"
)

// config is the contents of a .funcaudit.toml file.
//
//	receiver = "fns"
//	exclude = ["internal/legacy/**"]
//	tests = false
//
//	[operations]
//	"os.Chdir" = "chdir"
type config struct {
	Receiver   string            `toml:"receiver"`
	Exclude    []string          `toml:"exclude"`
	Tests      bool              `toml:"tests"`
	Operations map[string]string `toml:"operations"`
}

// operations returns the built-in call table merged with the configured one.
// Configured entries win.
func (c config) operations() map[string]string {
	ops := builtinOperations()
	maps.Copy(ops, c.Operations)

	return ops
}

// builtinOperations maps "<import path>.<func>" to the operation name a Functions value serves it under.
func builtinOperations() map[string]string {
	return map[string]string{
		"fmt.Print":    impfunc.FuncEcho,
		"fmt.Printf":   impfunc.FuncPrint,
		"fmt.Println":  impfunc.FuncEcho,
		"os.Exit":      impfunc.FuncExit,
		"os.Getenv":    "getenv",
		"os.Getwd":     "getwd",
		"os.Hostname":  "hostname",
		"os.ReadFile":  "file_get_contents",
		"os.Remove":    "unlink",
		"os.Setenv":    "setenv",
		"os.WriteFile": "file_put_contents",
		"time.Now":     "time",
		"time.Sleep":   "sleep",
	}
}

// loadConfig reads the config at path. With no path, .funcaudit.toml is read if it exists.
func loadConfig(fsys fs.FS, path string) (config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := fs.ReadFile(fsys, strings.TrimPrefix(path, "./"))
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config{}, nil
	}

	if err != nil {
		return config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg config

	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	for call, operation := range cfg.Operations {
		pkg, name, ok := strings.Cut(call, ".")
		if !ok || pkg == "" || name == "" || operation == "" {
			return config{}, fmt.Errorf("%w: %s: operation %q = %q", errBadConfig, path, call, operation)
		}
	}

	return cfg, nil
}

// unexported constants.
const (
	defaultConfigFile = ".funcaudit.toml"
)

// unexported variables.
var (
	errBadConfig = errors.New("bad config")
)
