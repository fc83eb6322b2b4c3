// funcaudit finds direct calls to global operations (os.Exit, fmt.Println, os.Getenv, ...) that bypass an
// impfunc.Functions value. Install it with `go install github.com/toejough/impfunc/funcaudit@latest` and run it
// from a module root:
//
//	funcaudit                      # audits **/*.go, skipping _test.go files
//	funcaudit --diff 'cmd/**/*.go' # also prints the rewrite that routes each call through fns
//
// Each finding is printed as file:line:col: call -> operation. The exit status is 1 when anything was found.
// Extra calls can be mapped in the [operations] table of .funcaudit.toml.
//
// The --diff rewrite is a starting point, not a finished edit. Calls without a dedicated Functions method become
// fns.Call("name", args...), which returns (any, error), so sites that used the original result as a single
// value (conditions, arguments, assignments to one variable) need a type assertion and error check by hand.
// A note follows every diff that contains such a rewrite.
package main

import (
	"fmt"
	"os"

	"github.com/toejough/impfunc/funcaudit/run"
)

// main is the entry point of the funcaudit tool.
func main() {
	if os.Args == nil {
		return
	}

	status, err := run.Run(os.Args, os.DirFS("."), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errorStatus)
	}

	os.Exit(status)
}

// unexported constants.
const (
	errorStatus = 2
)
