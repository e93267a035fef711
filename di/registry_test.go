package di

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/microdi/errors"
)

func TestNewRegistry(t *testing.T) {
	r := newTestRegistry(t)
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if r.ID() == "" {
		t.Error("expected registry ID to be set")
	}
	if other := newTestRegistry(t); other.ID() == r.ID() {
		t.Error("expected distinct registry IDs")
	}
}

func TestResolveNotRegistered(t *testing.T) {
	r := newTestRegistry(t)
	for _, name := range []string{"nonexistent", "", "svc.Missing"} {
		_, err := r.Resolve(name)
		if err == nil {
			t.Fatalf("expected error for unregistered %q", name)
		}
		if !errors.IsUnknownImplementation(err) {
			t.Errorf("expected UNKNOWN_IMPLEMENTATION for %q, got %v", name, err)
		}
		if !strings.Contains(err.Error(), "Unknown implementation: "+name) {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
}

func TestResolveTransientReturnsFreshInstances(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("svc.FancyClient", NewFancyClient)

	a, err := r.Resolve("svc.FancyClient", "apikey")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	b, err := r.Resolve("svc.FancyClient", "apikey")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if a.(*FancyClient) == b.(*FancyClient) {
		t.Error("expected distinct instances for transient registration")
	}
	if a.(*FancyClient).apiKey != "apikey" {
		t.Errorf("expected args forwarded, got %q", a.(*FancyClient).apiKey)
	}
}

func TestResolveSingletonIgnoresLaterArgs(t *testing.T) {
	r := newTestRegistry(t)
	calls := 0
	r.Register("svc.FancyClient", func(apiKey string) *FancyClient {
		calls++
		return NewFancyClient(apiKey)
	}, AsSingleton())

	first, err := r.Resolve("svc.FancyClient", "first")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := r.Resolve("svc.FancyClient", "second")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	third, err := r.Resolve("svc.FancyClient")
	if err != nil {
		t.Fatalf("Resolve without args failed: %v", err)
	}

	if first != second || second != third {
		t.Error("expected the identical instance for singleton registration")
	}
	if second.(*FancyClient).apiKey != "first" {
		t.Errorf("expected first construction args to stick, got %q", second.(*FancyClient).apiKey)
	}
	if calls != 1 {
		t.Errorf("expected constructor called once, got %d", calls)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("client", func() Client { return NewFancyClient("k") })
	r.Register("client", func() Client { return PlainClient{} }, AsSingleton())

	v, err := r.Resolve("client")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if v.(Client).IsFancy() {
		t.Error("expected the latest registration to win")
	}
	infos := r.Registrations()
	if len(infos) != 1 || !infos[0].Singleton {
		t.Errorf("expected single singleton registration, got %+v", infos)
	}
}

func TestRegisterOverwriteDropsCachedSingleton(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("counter", NewCounter, AsSingleton())
	old := MustResolve[*Counter](r, "counter")
	old.Add()

	r.Register("counter", NewCounter, AsSingleton())
	fresh := MustResolve[*Counter](r, "counter")
	if fresh == old {
		t.Fatal("expected re-registration to discard the cached instance")
	}
	if fresh.Get() != 0 {
		t.Errorf("expected fresh counter, got %d", fresh.Get())
	}
}

func TestRegisterNeverFails(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("", NewCounter)
	r.Register("not-a-func", 42)
	r.Register("nil", nil)

	if !r.Has("") || !r.Has("not-a-func") || !r.Has("nil") {
		t.Fatal("expected every registration to be stored")
	}
	if _, err := r.Resolve(""); err != nil {
		t.Errorf("expected empty name to resolve, got %v", err)
	}
}

func TestConstructorErrorPropagatesUnchanged(t *testing.T) {
	r := newTestRegistry(t)
	boom := stderrors.New("boom")
	attempts := 0
	r.Register("flaky", func() (*Counter, error) {
		attempts++
		if attempts == 1 {
			return nil, boom
		}
		return NewCounter(), nil
	}, AsSingleton())

	_, err := r.Resolve("flaky")
	if err != boom {
		t.Fatalf("expected the constructor's error value, got %v", err)
	}
	if r.Registrations()[0].Initialized {
		t.Error("failed construction must not be cached")
	}

	v, err := r.Resolve("flaky")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if v.(*Counter) == nil {
		t.Error("expected a counter")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestConstructorShapes(t *testing.T) {
	type key string
	type ctxKey struct{}

	tests := []struct {
		name        string
		constructor any
		args        []any
		want        any
	}{
		{"no args", func() int { return 7 }, nil, 7},
		{"value and nil error", func() (string, error) { return "ok", nil }, nil, "ok"},
		{"positional args", func(a string, b int) string { return fmt.Sprintf("%s-%d", a, b) }, []any{"x", 3}, "x-3"},
		{"variadic", func(parts ...string) string { return strings.Join(parts, ",") }, []any{"a", "b", "c"}, "a,b,c"},
		{"variadic empty", func(parts ...string) int { return len(parts) }, nil, 0},
		{"named string conversion", func(k key) string { return string(k) }, []any{"apikey"}, "apikey"},
		{"int to int64", func(n int64) int64 { return n * 2 }, []any{21}, int64(42)},
		{"int to float", func(f float64) float64 { return f / 2 }, []any{3}, 1.5},
		{"float64 to float32", func(f float32) float32 { return f }, []any{0.1}, float32(0.1)},
		{"float32 to float64", func(f float64) bool { return f > 0.24 && f < 0.26 }, []any{float32(0.25)}, true},
		{"nil pointer", func(c *Counter) bool { return c == nil }, []any{nil}, true},
		{"context injected", func(ctx context.Context) bool { return ctx != nil }, nil, true},
		{"context injected before args", func(ctx context.Context, s string) string { return s }, []any{"after"}, "after"},
		{"explicit context", func(ctx context.Context) any { return ctx.Value(ctxKey{}) },
			[]any{context.WithValue(context.Background(), ctxKey{}, "mine")}, "mine"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRegistry(t)
			r.Register("svc", tc.constructor)
			got, err := r.Resolve("svc", tc.args...)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v (%T), got %v (%T)", tc.want, tc.want, got, got)
			}
		})
	}
}

func TestConstructorMisuse(t *testing.T) {
	tests := []struct {
		name        string
		constructor any
		args        []any
		code        errors.ErrorCode
	}{
		{"not a function", "not-a-function", nil, errors.ErrCodeInvalidConstructor},
		{"nil constructor", nil, nil, errors.ErrCodeInvalidConstructor},
		{"nil func", (func() int)(nil), nil, errors.ErrCodeInvalidConstructor},
		{"no results", func() {}, nil, errors.ErrCodeInvalidConstructor},
		{"second result not error", func() (int, int) { return 1, 2 }, nil, errors.ErrCodeInvalidConstructor},
		{"too few args", func(a, b string) string { return a + b }, []any{"a"}, errors.ErrCodeArgumentMismatch},
		{"too many args", func() int { return 1 }, []any{"extra"}, errors.ErrCodeArgumentMismatch},
		{"wrong type", func(n int) int { return n }, []any{"one"}, errors.ErrCodeArgumentMismatch},
		{"nil for value type", func(n int) int { return n }, []any{nil}, errors.ErrCodeArgumentMismatch},
		{"overflow", func(n int8) int8 { return n }, []any{300}, errors.ErrCodeArgumentMismatch},
		{"negative to unsigned", func(n uint) uint { return n }, []any{-1}, errors.ErrCodeArgumentMismatch},
		{"float to int", func(n int) int { return n }, []any{1.5}, errors.ErrCodeArgumentMismatch},
		{"float32 overflow", func(f float32) float32 { return f }, []any{1e300}, errors.ErrCodeArgumentMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRegistry(t)
			r.Register("svc", tc.constructor)
			_, err := r.Resolve("svc", tc.args...)
			if !errors.HasCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestConcurrentSingletonConstructedOnce(t *testing.T) {
	r := newTestRegistry(t)
	var calls atomic.Int32
	r.Register("counter", func() *Counter {
		calls.Add(1)
		return NewCounter()
	}, AsSingleton())

	const workers = 32
	results := make([]*Counter, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustResolve[*Counter](r, "counter")
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected constructor called once, got %d", calls.Load())
	}
	for i, c := range results {
		if c != results[0] {
			t.Fatalf("worker %d got a different instance", i)
		}
	}
}

func TestConcurrentRegisterAndResolve(t *testing.T) {
	r := newTestRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("svc.%d", i%4), NewCounter)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Resolve(fmt.Sprintf("svc.%d", i%4))
		}(i)
	}
	wg.Wait()

	if len(r.Registrations()) != 4 {
		t.Errorf("expected 4 registrations, got %d", len(r.Registrations()))
	}
}

func TestRegistrations(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("b.transient", NewCounter)
	r.Register("a.singleton", NewCounter, AsSingleton())
	r.Register("c.singleton", NewCounter, Singleton(true))
	MustResolve[*Counter](r, "c.singleton")

	regs := r.Registrations()
	if len(regs) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(regs))
	}

	want := []RegistrationInfo{
		{Name: "a.singleton", Singleton: true, Initialized: false},
		{Name: "b.transient", Singleton: false, Initialized: false},
		{Name: "c.singleton", Singleton: true, Initialized: true},
	}
	for i, w := range want {
		if regs[i] != w {
			t.Errorf("registration %d: expected %+v, got %+v", i, w, regs[i])
		}
	}
}

func TestSingletonOptionFalse(t *testing.T) {
	r := newTestRegistry(t)
	r.Register("counter", NewCounter, AsSingleton(), Singleton(false))
	a := MustResolve[*Counter](r, "counter")
	b := MustResolve[*Counter](r, "counter")
	if a == b {
		t.Error("expected the later option to make the registration transient")
	}
}

func TestRegistryLogsOverwrite(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRegistry(t, &buf)
	r.Register("svc", NewCounter)
	r.Register("svc", NewCounter, AsSingleton())
	MustResolve[*Counter](r, "svc")

	out := buf.String()
	for _, want := range []string{
		`"message":"implementation registered"`,
		`"message":"implementation overwritten"`,
		`"message":"singleton initialized"`,
		`"message":"implementation constructed"`,
		`"operation":"construct"`,
		`"duration_ms":`,
		`"registry_id":"` + r.ID() + `"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got:\n%s", want, out)
		}
	}
}

func TestRegistryLogsConstructorFailure(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRegistry(t, &buf)
	r.Register("broken", func() (*Counter, error) { return nil, stderrors.New("no backend") })

	if _, err := r.Resolve("broken"); err == nil {
		t.Fatal("expected constructor error")
	}
	out := buf.String()
	for _, want := range []string{
		`"message":"constructor failed"`,
		`"error":"no backend"`,
		`"name":"broken"`,
		`"duration_ms":`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got:\n%s", want, out)
		}
	}
}
