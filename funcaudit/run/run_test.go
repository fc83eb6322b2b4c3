package run_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	. "github.com/onsi/gomega"
	"github.com/toejough/impfunc/funcaudit/run"
)

const mainSource = `package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("hi")
	if os.Getenv("DEBUG") != "" {
		os.Exit(1)
	}
}
`

const cleanSource = `package clean

import "github.com/toejough/impfunc"

func Run(fns impfunc.Functions) {
	fns.Echo("hi")
	fns.Exit(0)
}
`

func TestRun_ReportsFindings(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := fstest.MapFS{
		"cmd/app/main.go": {Data: []byte(mainSource)},
		"clean/clean.go":  {Data: []byte(cleanSource)},
		"README.md":       {Data: []byte("os.Exit(1)")},
	}

	status, out := runAudit(t, fsys, "--no-color")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(Equal(
		"cmd/app/main.go:9:2: fmt.Println -> echo\n" +
			"cmd/app/main.go:10:5: os.Getenv -> getenv\n" +
			"cmd/app/main.go:11:3: os.Exit -> exit\n"))
}

func TestRun_CleanTree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	status, out := runAudit(t, fstest.MapFS{"clean/clean.go": {Data: []byte(cleanSource)}}, "--no-color")

	g.Expect(status).To(Equal(run.StatusClean))
	g.Expect(out).To(BeEmpty())
}

func TestRun_ImportNames(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const source = `package aliased

import (
	xos "os"
	. "time"
	_ "embed"
)

func stop() {
	xos.Exit(3)
	Sleep(1)
}
`

	status, out := runAudit(t, fstest.MapFS{"aliased.go": {Data: []byte(source)}}, "--no-color")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(Equal("aliased.go:10:2: os.Exit -> exit\n"))
}

func TestRun_TestFilesSkippedByDefault(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := fstest.MapFS{"main_test.go": {Data: []byte(mainSource)}}

	status, out := runAudit(t, fsys, "--no-color")
	g.Expect(status).To(Equal(run.StatusClean))
	g.Expect(out).To(BeEmpty())

	status, out = runAudit(t, fsys, "--no-color", "--tests")
	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(ContainSubstring("main_test.go:11:3: os.Exit -> exit"))
}

func TestRun_PatternsAndExcludes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := fstest.MapFS{
		"cmd/app/main.go":      {Data: []byte(mainSource)},
		"cmd/tool/main.go":     {Data: []byte(mainSource)},
		"internal/legacy/x.go": {Data: []byte(mainSource)},
	}

	status, out := runAudit(t, fsys, "--no-color", "--exclude", "cmd/tool/**", "./cmd/**/*.go", "internal/**/*.go")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(ContainSubstring("cmd/app/main.go:"))
	g.Expect(out).To(ContainSubstring("internal/legacy/x.go:"))
	g.Expect(out).NotTo(ContainSubstring("cmd/tool/main.go:"))
}

func TestRun_ConfigAddsOperationsAndExcludes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const source = `package dirs

import "os"

func enter(dir string) error {
	return os.Chdir(dir)
}
`

	const cfg = `
exclude = ["vendor/**"]

[operations]
"os.Chdir" = "chdir"
`

	fsys := fstest.MapFS{
		"dirs.go":         {Data: []byte(source)},
		"vendor/dep.go":   {Data: []byte(mainSource)},
		".funcaudit.toml": {Data: []byte(cfg)},
	}

	status, out := runAudit(t, fsys, "--no-color")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(Equal("dirs.go:6:9: os.Chdir -> chdir\n"))
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		args    []string
		wantErr string
	}{
		{
			name:    "explicit config missing",
			fsys:    fstest.MapFS{},
			args:    []string{"--config", "missing.toml"},
			wantErr: "failed to read config missing.toml",
		},
		{
			name:    "malformed config",
			fsys:    fstest.MapFS{".funcaudit.toml": {Data: []byte("receiver = ")}},
			wantErr: "failed to parse config",
		},
		{
			name:    "operation without package",
			fsys:    fstest.MapFS{".funcaudit.toml": {Data: []byte("[operations]\nExit = \"exit\"\n")}},
			wantErr: "bad config",
		},
		{
			name:    "unparseable source",
			fsys:    fstest.MapFS{"broken.go": {Data: []byte("package broken\nfunc {")}},
			wantErr: "failed to parse broken.go",
		},
		{
			name:    "unknown flag",
			fsys:    fstest.MapFS{},
			args:    []string{"--frobnicate"},
			wantErr: "failed to parse arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			var out bytes.Buffer

			_, err := run.Run(append([]string{"funcaudit"}, tt.args...), tt.fsys, &out)

			g.Expect(err).To(HaveOccurred())
			g.Expect(err.Error()).To(ContainSubstring(tt.wantErr))
		})
	}
}

func TestRun_Diff(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	status, out := runAudit(t, fstest.MapFS{"main.go": {Data: []byte(mainSource)}}, "--no-color", "--diff")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(ContainSubstring("main.go (current)"))
	g.Expect(out).To(ContainSubstring("main.go (routed)"))
	g.Expect(out).To(ContainSubstring(`-	fmt.Println("hi")`))
	g.Expect(out).To(ContainSubstring(`+	fns.Echo(fmt.Sprintln("hi"))`))
	g.Expect(out).To(ContainSubstring(`+	if fns.Call("getenv", "DEBUG") != "" {`))
	g.Expect(out).To(ContainSubstring(`+		fns.Exit(1)`))
	g.Expect(out).To(ContainSubstring("note: fns.Call returns (any, error); single-value uses in main.go need adapting"))
}

func TestRun_DiffWithoutGenericCallsHasNoNote(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const source = `package quiet

import "fmt"

func greet() {
	fmt.Println("hi")
}
`

	status, out := runAudit(t, fstest.MapFS{"quiet.go": {Data: []byte(source)}}, "--no-color", "--diff")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(ContainSubstring(`+	fns.Echo(fmt.Sprintln("hi"))`))
	g.Expect(out).NotTo(ContainSubstring("note:"))
}

func TestRun_DiffReceiverAndNesting(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const source = `package nested

import "fmt"
import "os"

func show() {
	fmt.Printf("%s\n", os.Getenv("HOME"))
}
`

	status, out := runAudit(t, fstest.MapFS{"nested.go": {Data: []byte(source)}},
		"--no-color", "--diff", "--receiver", "host")

	g.Expect(status).To(Equal(run.StatusFindings))
	g.Expect(out).To(ContainSubstring("nested.go:7:2: fmt.Printf -> print"))
	g.Expect(out).To(ContainSubstring("nested.go:7:21: os.Getenv -> getenv"))
	g.Expect(out).To(ContainSubstring(`+	host.Print(fmt.Sprintf("%s\n", host.Call("getenv", "HOME")))`))
	g.Expect(out).To(ContainSubstring("note: host.Call returns (any, error)"))
}

func TestRun_Help(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	status, out := runAudit(t, fstest.MapFS{}, "--help")

	g.Expect(status).To(Equal(run.StatusClean))
	g.Expect(out).To(ContainSubstring("Usage: funcaudit"))
	g.Expect(out).To(ContainSubstring("--receiver"))
}

// runAudit runs funcaudit over fsys with args and returns the status and report.
func runAudit(t *testing.T, fsys fstest.MapFS, args ...string) (int, string) {
	t.Helper()

	var out bytes.Buffer

	status, err := run.Run(append([]string{"funcaudit"}, args...), fsys, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return status, out.String()
}
