package core

import "fmt"

// Function names with dedicated methods on Functions.
const (
	FuncDie         = "die"
	FuncEcho        = "echo"
	FuncExit        = "exit"
	FuncInclude     = "include"
	FuncIncludeOnce = "include_once"
	FuncPrint       = "print"
	FuncRequire     = "require"
	FuncRequireOnce = "require_once"
)

// Functions is the seam between code and the global operations it depends on.
// RealFunctions forwards to the real operations; FakeFunctions substitutes and
// records them. Code under test should accept a Functions and never call the
// globals directly.
type Functions interface {
	// Call invokes the named function with args.
	Call(name string, args ...any) (any, error)
	// Die ends the process. See Exit.
	Die(status ...any)
	// Echo writes text to the output.
	Echo(text string)
	// Exit ends the process. An integer status is the exit code; any other status is
	// written to the output before exiting with code 0.
	Exit(status ...any)
	// Include loads path, returning false on failure.
	Include(path string) (any, error)
	// IncludeOnce is Include, but returns true if path was already loaded.
	IncludeOnce(path string) (any, error)
	// Print writes text to the output.
	Print(text string)
	// Require loads path, returning an error on failure.
	Require(path string) (any, error)
	// RequireOnce is Require, but returns true if path was already loaded.
	RequireOnce(path string) (any, error)
}

// callNamed routes names that have a dedicated Functions method to that method.
// handled is false for any other name.
func callNamed(fns Functions, name string, args []any) (result any, handled bool, err error) {
	switch name {
	case FuncExit:
		fns.Exit(args...)
	case FuncDie:
		fns.Die(args...)
	case FuncEcho, FuncPrint:
		text, err := stringArg(name, args)
		if err != nil {
			return nil, true, err
		}

		if name == FuncEcho {
			fns.Echo(text)
		} else {
			fns.Print(text)
		}
	case FuncRequire, FuncRequireOnce, FuncInclude, FuncIncludeOnce:
		result, err := includeVia(fns, name, args)

		return result, true, err
	default:
		return nil, false, nil
	}

	return nil, true, nil
}

// includeVia calls the inclusion method of fns that matches name.
func includeVia(fns Functions, name string, args []any) (any, error) {
	path, err := stringArg(name, args)
	if err != nil {
		return nil, err
	}

	switch name {
	case FuncRequire:
		return fns.Require(path)
	case FuncRequireOnce:
		return fns.RequireOnce(path)
	case FuncInclude:
		return fns.Include(path)
	default:
		return fns.IncludeOnce(path)
	}
}

func isIncludeFunc(name string) bool {
	switch name {
	case FuncRequire, FuncRequireOnce, FuncInclude, FuncIncludeOnce:
		return true
	default:
		return false
	}
}

func isRecordingFunc(name string) bool {
	switch name {
	case FuncExit, FuncDie, FuncEcho, FuncPrint:
		return true
	default:
		return false
	}
}

func stringArg(name string, args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s expects 1 arg, got %d", ErrBadArguments, name, len(args))
	}

	text, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s expects a string, got %T", ErrBadArguments, name, args[0])
	}

	return text, nil
}
