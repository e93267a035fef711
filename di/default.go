package di

import "sync"

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide registry and returns the previous
// one. Passing nil makes the next Default call start from an empty registry.
// Tests use it to isolate registrations:
//
//	prev := di.SetDefault(di.NewRegistry())
//	defer di.SetDefault(prev)
func SetDefault(r *Registry) *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultRegistry
	defaultRegistry = r
	return prev
}

// Register stores constructor under name in the default registry.
func Register(name string, constructor any, opts ...RegisterOption) {
	Default().Register(name, constructor, opts...)
}

// GetInstance resolves name from the default registry.
func GetInstance(name string, args ...any) (any, error) {
	return Default().Resolve(name, args...)
}
