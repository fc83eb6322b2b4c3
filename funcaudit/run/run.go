// Package run implements the main logic for the funcaudit tool in a testable way.
package run

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
)

// Exit statuses returned by Run.
const (
	StatusClean    = 0
	StatusFindings = 1
)

// Structs - Private

// cliArgs defines the command-line arguments for funcaudit.
type cliArgs struct {
	Patterns []string `arg:"positional"        help:"file globs to audit, relative to the working directory (default **/*.go)"`
	Config   string   `arg:"--config"          help:"TOML config file (default .funcaudit.toml, if present)"`
	Diff     bool     `arg:"--diff"            help:"print a diff that routes each finding through the receiver"`
	Exclude  []string `arg:"--exclude,separate" help:"glob of files to skip; may be repeated"`
	NoColor  bool     `arg:"--no-color"        help:"disable colored output"`
	Receiver string   `arg:"--receiver"        help:"name of the Functions value used in --diff rewrites (default fns)"`
	Tests    bool     `arg:"--tests"           help:"also audit _test.go files"`
}

// auditor holds the resolved settings for one run.
type auditor struct {
	fsys       fs.FS
	out        io.Writer
	operations map[string]string
	receiver   string
	exclude    []string
	tests      bool
	diff       bool
	highlight  *color.Color
}

// Functions - Public

// Run executes the funcaudit tool logic. It takes command-line arguments, the file system to audit, and a writer
// for the report. It reports every direct call to a known global operation and returns StatusFindings if there
// were any, or StatusClean otherwise. An error is returned when the arguments, config or source files are invalid.
func Run(args []string, fsys fs.FS, out io.Writer) (int, error) {
	parsed, err := parseArgs(args, out)
	if errors.Is(err, arg.ErrHelp) {
		return StatusClean, nil
	}

	if err != nil {
		return 0, err
	}

	cfg, err := loadConfig(fsys, parsed.Config)
	if err != nil {
		return 0, err
	}

	audit := newAuditor(parsed, cfg, fsys, out)

	files, err := audit.files(parsed.Patterns)
	if err != nil {
		return 0, err
	}

	total := 0

	for _, name := range files {
		count, err := audit.file(name)
		if err != nil {
			return 0, err
		}

		total += count
	}

	if total > 0 {
		return StatusFindings, nil
	}

	return StatusClean, nil
}

// Functions - Private

func newAuditor(parsed cliArgs, cfg config, fsys fs.FS, out io.Writer) *auditor {
	receiver := parsed.Receiver
	if receiver == "" {
		receiver = cfg.Receiver
	}

	if receiver == "" {
		receiver = defaultReceiver
	}

	highlight := color.New(color.FgYellow, color.Bold)
	if parsed.NoColor {
		highlight.DisableColor()
	}

	return &auditor{
		fsys:       fsys,
		out:        out,
		operations: cfg.operations(),
		receiver:   receiver,
		exclude:    append(slices.Clone(cfg.Exclude), parsed.Exclude...),
		tests:      parsed.Tests || cfg.Tests,
		diff:       parsed.Diff,
		highlight:  highlight,
	}
}

// file audits one file and reports its findings, returning how many there were.
func (a *auditor) file(name string) (int, error) {
	src, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", name, err)
	}

	parsed, err := auditSource(name, src, a.operations)
	if err != nil {
		return 0, err
	}

	for _, found := range parsed.findings {
		_, _ = fmt.Fprintf(a.out, "%s:%d:%d: %s -> %s\n",
			name, found.line, found.column, found.call, a.highlight.Sprint(found.operation))
	}

	if a.diff && len(parsed.findings) > 0 {
		diff, err := parsed.diff(name, string(src), a.receiver)
		if err != nil {
			return 0, err
		}

		_, _ = fmt.Fprintf(a.out, "\n%s\n", diff)

		if parsed.routesThroughCall() {
			_, _ = fmt.Fprintf(a.out, "note: %s.Call returns (any, error); single-value uses in %s need adapting\n\n",
				a.receiver, name)
		}
	}

	return len(parsed.findings), nil
}

// files expands patterns into the sorted, deduplicated list of Go files to audit.
func (a *auditor) files(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{defaultPattern}
	}

	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(a.fsys, strings.TrimPrefix(pattern, "./"))
		if err != nil {
			return nil, fmt.Errorf("glob failed for pattern %s: %w", pattern, err)
		}

		for _, name := range matches {
			skip, err := a.skipped(name)
			if err != nil {
				return nil, err
			}

			if !skip {
				seen[name] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(seen))
	for name := range seen {
		files = append(files, name)
	}

	slices.Sort(files)

	return files, nil
}

func (a *auditor) skipped(name string) (bool, error) {
	if !strings.HasSuffix(name, ".go") {
		return true, nil
	}

	if !a.tests && strings.HasSuffix(name, "_test.go") {
		return true, nil
	}

	for _, pattern := range a.exclude {
		matched, err := doublestar.Match(strings.TrimPrefix(pattern, "./"), name)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %s: %w", pattern, err)
		}

		if matched {
			return true, nil
		}
	}

	return false, nil
}

// parseArgs parses command-line arguments into cliArgs. Help output goes to out.
func parseArgs(args []string, out io.Writer) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "funcaudit"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(out)

		return cliArgs{}, err
	}

	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// unexported constants.
const (
	defaultPattern  = "**/*.go"
	defaultReceiver = "fns"
)
