package di

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/microdi/errors"
	"github.com/kbukum/microdi/observability"
)

// Params holds the keyword parameters of an injectable function.
type Params map[string]any

// Func is a function whose keyword parameters can be filled by Inject.
type Func[R any] func(ctx context.Context, params Params) (R, error)

// Binding maps the keyword parameter Key to the implementation registered
// as Name. Args are passed to the constructor on resolution; against a
// singleton that is already constructed they have no effect.
type Binding struct {
	Key  string
	Name string
	Args []any
}

// Bind creates a Binding.
//
//	di.Bind("client", "svc.FancyClient", "apikey")
func Bind(key, name string, args ...any) Binding {
	return Binding{Key: key, Name: name, Args: slices.Clone(args)}
}

// Inject returns a decorator that fills keyword parameters of a Func from
// the registry.
//
// On every call of the decorated function, bindings are processed in the
// order given. A binding whose key is already present in the call's Params
// is skipped without resolving anything; otherwise its name is resolved and
// the result stored under the key. The target is then called with the
// completed Params. The caller's map is never modified.
//
// If a resolution fails the target is not called and the error is returned.
func Inject[R any](r *Registry, bindings ...Binding) func(Func[R]) Func[R] {
	bound := slices.Clone(bindings)

	return func(target Func[R]) Func[R] {
		return func(ctx context.Context, params Params) (R, error) {
			if ctx == nil {
				ctx = context.Background()
			}

			call := make(Params, len(params)+len(bound))
			maps.Copy(call, params)

			spanCtx, span := r.tracer.Start(ctx, observability.SpanInject, trace.WithAttributes(
				attribute.String(observability.AttrRegistryID, r.id),
				attribute.Int(observability.AttrArgCount, len(bound)),
			))
			for _, b := range bound {
				if _, supplied := call[b.Key]; supplied {
					continue
				}
				instance, err := r.ResolveContext(spanCtx, b.Name, b.Args...)
				if err != nil {
					span.SetAttributes(attribute.String(observability.AttrKey, b.Key))
					observability.EndSpan(span, err)
					var zero R
					return zero, err
				}
				call[b.Key] = instance
			}
			span.End()

			return target(ctx, call)
		}
	}
}

// Arg returns the keyword parameter key as a T.
func Arg[T any](params Params, key string) (T, error) {
	var zero T
	v, ok := params[key]
	if !ok {
		return zero, errors.MissingParam(key)
	}
	result, ok := v.(T)
	if !ok {
		return zero, errors.TypeMismatch(key, v, typeName[T]())
	}
	return result, nil
}

// MustArg is Arg that panics on error. Use it inside injected functions
// whose bindings guarantee the parameter.
func MustArg[T any](params Params, key string) T {
	v, err := Arg[T](params, key)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
