package di

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/microdi/errors"
	"github.com/kbukum/microdi/logger"
	"github.com/kbukum/microdi/observability"
)

// Registry maps names to constructors. The zero value is not usable; create
// registries with NewRegistry, or use Default for the process-wide one.
type Registry struct {
	id      string
	mu      sync.RWMutex
	records map[string]*registration

	// waitMu guards registration.holder and chain.waiting.
	waitMu sync.Mutex

	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
}

// registration is the record stored for one name. A re-registration
// replaces the whole record, cached instance included.
type registration struct {
	name        string
	constructor any
	singleton   bool

	mu          sync.RWMutex
	instance    any
	initialized bool
	holder      *chain
}

// RegistrationInfo describes a registered name for introspection.
type RegistrationInfo struct {
	Name        string
	Singleton   bool
	Initialized bool // singleton instance already constructed
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registry events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTracerProvider makes the registry create its spans from tp instead of
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		r.tracer = observability.TracerFrom(tp)
	}
}

// WithMetrics records resolution metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

// Singleton sets whether the constructor runs at most once for the name.
func Singleton(enabled bool) RegisterOption {
	return func(reg *registration) {
		reg.singleton = enabled
	}
}

// AsSingleton is shorthand for Singleton(true).
func AsSingleton() RegisterOption {
	return Singleton(true)
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		id:      uuid.NewString(),
		records: make(map[string]*registration),
		log:     logger.Get("di"),
		tracer:  observability.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithFields(logger.Fields(logger.FieldRegistry, r.id))
	return r
}

// ID returns the unique identifier of the registry, as used in logs and spans.
func (r *Registry) ID() string {
	return r.id
}

// Register stores constructor under name, replacing any previous
// registration. The constructor is not inspected until it is resolved, so
// Register never fails.
func (r *Registry) Register(name string, constructor any, opts ...RegisterOption) {
	reg := &registration{
		name:        name,
		constructor: constructor,
	}
	for _, opt := range opts {
		opt(reg)
	}

	r.mu.Lock()
	_, replaced := r.records[name]
	r.records[name] = reg
	r.mu.Unlock()

	fields := logger.Fields(logger.FieldName, name, logger.FieldSingleton, reg.singleton)
	if replaced {
		r.log.Warn("implementation overwritten", fields)
		return
	}
	r.log.Debug("implementation registered", fields)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[name]
	return ok
}

// Registrations returns info about all registered names, sorted by name.
func (r *Registry) Registrations() []RegistrationInfo {
	r.mu.RLock()
	result := make([]RegistrationInfo, 0, len(r.records))
	for name, reg := range r.records {
		reg.mu.RLock()
		result = append(result, RegistrationInfo{
			Name:        name,
			Singleton:   reg.singleton,
			Initialized: reg.initialized,
		})
		reg.mu.RUnlock()
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b RegistrationInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// Resolve returns an instance of the implementation registered as name,
// passing args to its constructor. Transient registrations are constructed
// on every call. Singletons are constructed on the first successful call and
// the cached instance is returned afterwards; args of later calls are
// ignored.
//
// An unregistered name fails with an UNKNOWN_IMPLEMENTATION error. Errors
// returned by the constructor are passed through unchanged.
func (r *Registry) Resolve(name string, args ...any) (any, error) {
	return r.ResolveContext(context.Background(), name, args...)
}

// ResolveContext is Resolve with a context. The context is handed to
// constructors whose first parameter is a context.Context and carries the
// resolution path used to detect cycles.
func (r *Registry) ResolveContext(ctx context.Context, name string, args ...any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	ctx, span := r.tracer.Start(ctx, observability.SpanResolve, trace.WithAttributes(
		attribute.String(observability.AttrRegistryID, r.id),
		attribute.String(observability.AttrName, name),
		attribute.Int(observability.AttrArgCount, len(args)),
	))

	instance, kind, err := r.resolve(ctx, name, args)

	span.SetAttributes(attribute.Bool(observability.AttrCached, kind == observability.KindCached))
	observability.EndSpan(span, err)
	r.record(ctx, name, kind, err, time.Since(start))

	return instance, err
}

func (r *Registry) resolve(ctx context.Context, name string, args []any) (any, string, error) {
	if path, cyclic := checkCycle(ctx, name); cyclic {
		return nil, observability.KindUnknown, errors.CyclicDependency(path)
	}

	r.mu.RLock()
	reg, exists := r.records[name]
	r.mu.RUnlock()

	if !exists {
		return nil, observability.KindUnknown, errors.UnknownImplementation(name)
	}

	ctx = withResolution(ctx, name)
	if !reg.singleton {
		instance, err := r.construct(ctx, reg, args)
		return instance, observability.KindTransient, err
	}
	return r.resolveSingleton(ctx, reg, args)
}

func (r *Registry) resolveSingleton(ctx context.Context, reg *registration, args []any) (any, string, error) {
	reg.mu.RLock()
	if reg.initialized {
		instance := reg.instance
		reg.mu.RUnlock()
		return instance, observability.KindCached, nil
	}
	reg.mu.RUnlock()

	if path, cyclic := r.lockSingleton(ctx, reg); cyclic {
		return nil, observability.KindSingleton, errors.CyclicDependency(path)
	}
	defer r.unlockSingleton(reg)

	// Double-check pattern
	if reg.initialized {
		return reg.instance, observability.KindCached, nil
	}

	instance, err := r.construct(ctx, reg, args)
	if err != nil {
		return nil, observability.KindSingleton, err
	}

	reg.instance = instance
	reg.initialized = true

	r.log.WithContext(ctx).Info("singleton initialized", logger.Fields(
		logger.FieldName, reg.name,
		logger.FieldArgs, len(args),
	))
	return instance, observability.KindSingleton, nil
}

func (r *Registry) construct(ctx context.Context, reg *registration, args []any) (any, error) {
	ctx, span := r.tracer.Start(ctx, observability.SpanConstruct, trace.WithAttributes(
		attribute.String(observability.AttrName, reg.name),
		attribute.Bool(observability.AttrSingleton, reg.singleton),
	))

	start := time.Now()
	instance, err := callConstructor(ctx, reg.name, reg.constructor, args)
	observability.EndSpan(span, err)

	if r.metrics != nil {
		r.metrics.RecordConstruction(ctx, reg.name)
	}
	fields := logger.DurationFields("construct", time.Since(start))
	fields[logger.FieldName] = reg.name
	if err != nil {
		r.log.WithContext(ctx).Debug("constructor failed", logger.MergeWithError(fields, err))
		return nil, err
	}
	r.log.WithContext(ctx).Debug("implementation constructed", fields)
	return instance, nil
}

func (r *Registry) record(ctx context.Context, name, kind string, err error, d time.Duration) {
	if r.metrics == nil {
		return
	}
	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		r.metrics.RecordError(ctx, code, name)
	}
	r.metrics.RecordResolution(ctx, name, kind, status, d)
}
