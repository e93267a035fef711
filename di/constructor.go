package di

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/kbukum/microdi/errors"
)

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
)

// callConstructor invokes constructor with args. Supported shapes:
//
//	func(args...) T
//	func(args...) (T, error)
//	func(ctx context.Context, args...) (T, error)
//
// The resolution context fills a leading context.Context parameter unless
// the caller passed one explicitly. An error returned by the constructor is
// returned as is.
func callConstructor(ctx context.Context, name string, constructor any, args []any) (any, error) {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, errors.InvalidConstructor(name, fmt.Sprintf("must be a function, got %T", constructor))
	}

	fnType := fn.Type()
	if err := checkResults(name, fnType); err != nil {
		return nil, err
	}

	in, err := buildArgs(ctx, name, fnType, args)
	if err != nil {
		return nil, err
	}

	results := fn.Call(in)
	if len(results) == 2 && !isNilValue(results[1]) {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

func checkResults(name string, fnType reflect.Type) error {
	switch fnType.NumOut() {
	case 1:
		return nil
	case 2:
		if fnType.Out(1).Implements(errorType) {
			return nil
		}
	}
	return errors.InvalidConstructor(name, fmt.Sprintf("%s must return (T) or (T, error)", fnType))
}

func buildArgs(ctx context.Context, name string, fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	if numIn > 0 && fnType.In(0) == contextType && !leadingContext(args) {
		args = append([]any{ctx}, args...)
	}

	fixed := numIn
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > numIn) {
		want := fmt.Sprintf("%d", fixed)
		if variadic {
			want = fmt.Sprintf("at least %d", fixed)
		}
		return nil, errors.ArgumentMismatch(name, fmt.Sprintf("expected %s arguments, got %d", want, len(args)))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var paramType reflect.Type
		if variadic && i >= fixed {
			paramType = fnType.In(numIn - 1).Elem()
		} else {
			paramType = fnType.In(i)
		}
		v, err := convertArg(arg, paramType)
		if err != nil {
			return nil, errors.ArgumentMismatch(name, fmt.Sprintf("argument %d: %v", i, err))
		}
		in[i] = v
	}
	return in, nil
}

func leadingContext(args []any) bool {
	if len(args) == 0 {
		return false
	}
	_, ok := args[0].(context.Context)
	return ok
}

// convertArg adapts arg to paramType. Assignable values pass through; nil
// becomes the zero value of nilable types; strings, bools and numbers are
// converted between named and unnamed types and across numeric kinds when
// the value survives the round trip. Floats narrow to the nearest value.
func convertArg(arg any, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(paramType), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", paramType)
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(paramType) {
		return v, nil
	}
	if isFloat(v.Kind()) && isFloat(paramType.Kind()) {
		// Precision loss is accepted; overflow is not.
		converted := v.Convert(paramType)
		if math.IsInf(converted.Float(), 0) && !math.IsInf(v.Float(), 0) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", arg, paramType)
		}
		return converted, nil
	}
	if convertible(v.Type(), paramType) {
		if isSigned(v.Kind()) && isUnsigned(paramType.Kind()) && v.Int() < 0 {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", arg, paramType)
		}
		converted := v.Convert(paramType)
		if isUnsigned(v.Kind()) && isSigned(paramType.Kind()) && converted.Int() < 0 {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", arg, paramType)
		}
		if converted.Convert(v.Type()).Interface() == arg {
			return converted, nil
		}
		return reflect.Value{}, fmt.Errorf("%v does not fit in %s", arg, paramType)
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), paramType)
}

func convertible(from, to reflect.Type) bool {
	fk, tk := from.Kind(), to.Kind()
	switch {
	case fk == reflect.String && tk == reflect.String:
		return true
	case fk == reflect.Bool && tk == reflect.Bool:
		return true
	case isInteger(fk):
		return isInteger(tk) || isFloat(tk)
	case isFloat(fk):
		return isFloat(tk)
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
