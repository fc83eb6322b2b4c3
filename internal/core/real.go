package core

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// IncludeHook runs after a file is loaded by one of the include functions, with the
// file's absolute path and decoded document. A non-nil error fails the include.
type IncludeHook func(path string, document any) error

// RealFunctions is the production implementation of Functions.
//
// Call looks the name up in a function table, which holds the standard host
// functions plus anything added with Register or WithFunction. Exit and Die end the
// process; Echo and Print write to the configured output.
type RealFunctions struct {
	mu         sync.RWMutex // guards functions
	functions  map[string]any
	includes   *includeTable
	hook       IncludeHook
	logger     *zap.Logger
	out        io.Writer
	exit       func(code int)
	noDefaults bool
}

// NewReal returns a RealFunctions with the standard function table.
func NewReal(opts ...RealOption) *RealFunctions {
	gateway := &RealFunctions{
		functions: make(map[string]any),
		includes:  newIncludeTable(),
		logger:    zap.NewNop(),
		out:       os.Stdout,
		exit:      os.Exit,
	}

	for _, opt := range opts {
		opt(gateway)
	}

	if !gateway.noDefaults {
		for name, fn := range defaultFunctions(gateway) {
			if _, ok := gateway.functions[name]; !ok {
				gateway.functions[name] = fn
			}
		}
	}

	return gateway
}

// Call invokes the named function with args.
// It returns ErrUndefinedFunction when no function is registered under name.
// Errors returned by the function itself are passed through unmodified.
func (r *RealFunctions) Call(name string, args ...any) (any, error) {
	if result, handled, err := callNamed(r, name, args); handled {
		return result, err
	}

	r.mu.RLock()
	fn, ok := r.functions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: function %q does not exist", ErrUndefinedFunction, name)
	}

	return callFunc(fn, args)
}

// Die ends the process. See Exit.
func (r *RealFunctions) Die(status ...any) {
	r.terminate(status)
}

// Echo writes text to the output.
func (r *RealFunctions) Echo(text string) {
	r.write(text)
}

// Exit ends the process. A status of any integer type is used as the exit code. Any
// other status is written to the output, and the process exits with code 0.
func (r *RealFunctions) Exit(status ...any) {
	r.terminate(status)
}

// Has reports whether a function is registered under name.
func (r *RealFunctions) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.functions[name]

	return ok
}

// Names returns the registered function names, sorted.
func (r *RealFunctions) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))

	for name := range r.functions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	return names
}

// Print writes text to the output.
func (r *RealFunctions) Print(text string) {
	r.write(text)
}

// Register adds fn to the function table under name, replacing any previous entry.
func (r *RealFunctions) Register(name string, fn any) error {
	if !isCallable(fn) {
		return fmt.Errorf("%w: %q is a %T", ErrNotCallable, name, fn)
	}

	r.mu.Lock()
	r.functions[name] = fn
	r.mu.Unlock()

	return nil
}

// errorLog logs message at error level. It backs the "error_log" function.
func (r *RealFunctions) errorLog(message string) bool {
	r.logger.Error(message)

	return true
}

func (r *RealFunctions) terminate(status []any) {
	code := 0

	if len(status) > 0 && status[0] != nil {
		value := reflect.ValueOf(status[0])

		switch {
		case isIntKind(value.Kind()):
			code = int(value.Int())
		case isUintKind(value.Kind()):
			code = int(value.Uint()) //nolint:gosec // exit codes are truncated by the OS anyway
		default:
			r.write(fmt.Sprint(status[0]))
		}
	}

	r.logger.Debug("exit", zap.Int("code", code))
	r.exit(code)
}

func (r *RealFunctions) write(text string) {
	_, err := io.WriteString(r.out, text)
	if err != nil {
		r.logger.Warn("write failed", zap.Error(err))
	}
}

// RealOption configures a RealFunctions.
type RealOption func(*RealFunctions)

// WithExitFunc replaces os.Exit as the way Exit and Die end the process.
func WithExitFunc(exit func(code int)) RealOption {
	return func(r *RealFunctions) {
		r.exit = exit
	}
}

// WithFunction registers fn under name. Non-func values are ignored.
// Functions added this way take precedence over the standard table.
func WithFunction(name string, fn any) RealOption {
	return func(r *RealFunctions) {
		if isCallable(fn) {
			r.functions[name] = fn
		}
	}
}

// WithIncludeHook sets a hook that runs after each successful file load.
func WithIncludeHook(hook IncludeHook) RealOption {
	return func(r *RealFunctions) {
		r.hook = hook
	}
}

// WithLogger sets the logger used by error_log and for diagnostics.
func WithLogger(logger *zap.Logger) RealOption {
	return func(r *RealFunctions) {
		r.logger = logger
	}
}

// WithOutput sets where Echo, Print and string exit statuses are written.
func WithOutput(out io.Writer) RealOption {
	return func(r *RealFunctions) {
		r.out = out
	}
}

// WithoutDefaults leaves the standard host functions out of the function table.
func WithoutDefaults() RealOption {
	return func(r *RealFunctions) {
		r.noDefaults = true
	}
}
