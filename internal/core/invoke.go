package core

import (
	"fmt"
	"math"
	"reflect"
)

// unexported constants.
const (
	twoTo63 = float64(1 << 63)
	twoTo64 = float64(1 << 64)
)

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type lookup, effectively a constant
	errorType = reflect.TypeFor[error]()
)

// callFunc invokes fn with args via reflection.
//
// Nil args become the parameter's zero value, and numeric args are converted between
// numeric kinds when the value survives the conversion unchanged. A trailing error result is returned as the call's error. A single
// remaining result is returned as-is; several are returned as []any.
// Panics raised by fn are not recovered.
func callFunc(fn any, args []any) (any, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()

	in, err := buildArgs(fnType, args)
	if err != nil {
		return nil, err
	}

	return splitResults(fnType, fnVal.Call(in))
}

// argValue converts a recorded arg into a value assignable to paramType.
func argValue(arg any, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(paramType), nil
	}

	val := reflect.ValueOf(arg)
	if val.Type().AssignableTo(paramType) {
		return val, nil
	}

	if isNumericKind(val.Kind()) && isNumericKind(paramType.Kind()) {
		if !fitsNumeric(val, paramType) {
			//nolint:err113 // validation error with dynamic context
			return reflect.Value{}, fmt.Errorf("%v (%T) does not fit in %s", arg, arg, paramType)
		}

		return val.Convert(paramType), nil
	}

	//nolint:err113 // validation error with dynamic context
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, paramType)
}

func buildArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	if variadic && len(args) < numIn-1 {
		return nil, fmt.Errorf("%w: expected at least %d args, got %d", ErrBadArguments, numIn-1, len(args))
	}

	if !variadic && len(args) != numIn {
		return nil, fmt.Errorf("%w: expected %d args, got %d", ErrBadArguments, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))

	for index, arg := range args {
		var paramType reflect.Type
		if variadic && index >= numIn-1 {
			paramType = fnType.In(numIn - 1).Elem()
		} else {
			paramType = fnType.In(index)
		}

		val, err := argValue(arg, paramType)
		if err != nil {
			return nil, fmt.Errorf("%w: arg %d: %w", ErrBadArguments, index, err)
		}

		in[index] = val
	}

	return in, nil
}

// fitsNumeric reports whether val converts to target without wrapping, truncation or
// overflow.
func fitsNumeric(val reflect.Value, target reflect.Type) bool {
	limit := reflect.Zero(target)

	switch {
	case isIntKind(target.Kind()):
		switch {
		case isIntKind(val.Kind()):
			return !limit.OverflowInt(val.Int())
		case isUintKind(val.Kind()):
			u := val.Uint()

			return u <= math.MaxInt64 && !limit.OverflowInt(int64(u))
		default:
			f := val.Float()

			return isWhole(f) && f >= math.MinInt64 && f < twoTo63 && !limit.OverflowInt(int64(f))
		}
	case isUintKind(target.Kind()):
		switch {
		case isIntKind(val.Kind()):
			i := val.Int()

			return i >= 0 && !limit.OverflowUint(uint64(i))
		case isUintKind(val.Kind()):
			return !limit.OverflowUint(val.Uint())
		default:
			f := val.Float()

			return isWhole(f) && f >= 0 && f < twoTo64 && !limit.OverflowUint(uint64(f))
		}
	default:
		if isIntKind(val.Kind()) || isUintKind(val.Kind()) {
			return true
		}

		f := val.Float()

		return math.IsNaN(f) || math.IsInf(f, 0) || !limit.OverflowFloat(f)
	}
}

// isCallable reports whether v is a non-nil func.
func isCallable(v any) bool {
	if v == nil {
		return false
	}

	val := reflect.ValueOf(v)

	return val.Kind() == reflect.Func && !val.IsNil()
}

func isIntKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isNumericKind(kind reflect.Kind) bool {
	return isIntKind(kind) || isUintKind(kind) || kind == reflect.Float32 || kind == reflect.Float64
}

func isUintKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// resolve invokes entry with args when it is a func, and otherwise returns it unchanged.
func resolve(entry any, args []any) (any, error) {
	if isCallable(entry) {
		return callFunc(entry, args)
	}

	return entry, nil
}

func splitResults(fnType reflect.Type, out []reflect.Value) (any, error) {
	var err error

	if numOut := fnType.NumOut(); numOut > 0 && fnType.Out(numOut-1) == errorType {
		if last := out[numOut-1]; !last.IsNil() {
			err = last.Interface().(error) //nolint:forcetypeassert // checked against errorType above
		}

		out = out[:numOut-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		values := make([]any, len(out))
		for i, val := range out {
			values[i] = val.Interface()
		}

		return values, err
	}
}
