package di

import (
	"context"
	"slices"
)

type resolutionKey struct{}

// resolution is the per-context resolution state: the names being resolved,
// outermost first, and the chain they belong to.
type resolution struct {
	path  []string
	chain *chain
}

// chain identifies one resolution call tree across the singleton locks it
// holds or waits for. Guarded by Registry.waitMu.
type chain struct {
	waiting *registration
}

func resolutionFrom(ctx context.Context) resolution {
	res, _ := ctx.Value(resolutionKey{}).(resolution)
	return res
}

// ResolutionPath returns the names being resolved in ctx, outermost first.
// Constructors that accept a context can use it for diagnostics.
func ResolutionPath(ctx context.Context) []string {
	return slices.Clone(resolutionFrom(ctx).path)
}

// withResolution returns a context whose resolution path ends with name.
// The first resolution in a call tree starts a new chain.
func withResolution(ctx context.Context, name string) context.Context {
	res := resolutionFrom(ctx)
	next := make([]string, len(res.path), len(res.path)+1)
	copy(next, res.path)
	c := res.chain
	if c == nil {
		c = &chain{}
	}
	return context.WithValue(ctx, resolutionKey{}, resolution{path: append(next, name), chain: c})
}

// checkCycle reports whether name is already being resolved in ctx and, if
// so, the path that closes the cycle.
func checkCycle(ctx context.Context, name string) ([]string, bool) {
	path := resolutionFrom(ctx).path
	if !slices.Contains(path, name) {
		return nil, false
	}
	return append(slices.Clone(path), name), true
}

// lockSingleton takes the construction lock of reg for the chain in ctx.
// Before blocking it follows the wait-for edges from the current holder; if
// they lead back to this chain, two call trees are waiting on each other and
// the cycle is returned instead of deadlocking.
func (r *Registry) lockSingleton(ctx context.Context, reg *registration) ([]string, bool) {
	res := resolutionFrom(ctx)
	c := res.chain

	r.waitMu.Lock()
	path := slices.Clone(res.path)
	for holder := reg.holder; holder != nil; {
		if holder == c {
			r.waitMu.Unlock()
			return path, true
		}
		next := holder.waiting
		if next == nil {
			break
		}
		path = append(path, next.name)
		holder = next.holder
	}
	c.waiting = reg
	r.waitMu.Unlock()

	reg.mu.Lock()

	r.waitMu.Lock()
	c.waiting = nil
	reg.holder = c
	r.waitMu.Unlock()
	return nil, false
}

func (r *Registry) unlockSingleton(reg *registration) {
	r.waitMu.Lock()
	reg.holder = nil
	r.waitMu.Unlock()
	reg.mu.Unlock()
}
