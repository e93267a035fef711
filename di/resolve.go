package di

import (
	"context"
	"fmt"

	"github.com/kbukum/microdi/errors"
)

// Resolve resolves a component with type safety, returns error on failure.
// Use this when you want to handle resolution errors gracefully.
//
// Example:
//
//	client, err := di.Resolve[Client](reg, "svc.FancyClient", "apikey")
//	if err != nil {
//	    return fmt.Errorf("failed to get client: %w", err)
//	}
func Resolve[T any](r *Registry, name string, args ...any) (T, error) {
	return ResolveCtx[T](context.Background(), r, name, args...)
}

// ResolveCtx is Resolve with a context.
func ResolveCtx[T any](ctx context.Context, r *Registry, name string, args ...any) (T, error) {
	var zero T
	instance, err := r.ResolveContext(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(name, instance, typeName[T]())
	}
	return result, nil
}

// MustResolve resolves a component with type safety, panics on error.
//
// Example:
//
//	counter := di.MustResolve[*Counter](reg, "svc.Counter")
func MustResolve[T any](r *Registry, name string, args ...any) T {
	result, err := Resolve[T](r, name, args...)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return result
}

// TryResolve resolves a component, returns zero value and false on any failure.
// Use this when a dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryResolve[MetricsClient](reg, "metrics"); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[T any](r *Registry, name string, args ...any) (T, bool) {
	result, err := Resolve[T](r, name, args...)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// TypedResolver returns a function that resolves name with args each time it is called.
func TypedResolver[T any](r *Registry, name string, args ...any) func() (T, error) {
	return func() (T, error) {
		return Resolve[T](r, name, args...)
	}
}
