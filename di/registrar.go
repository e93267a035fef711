package di

// Provide returns a decorator that registers a constructor under name.
// The decorator hands back the constructor itself, so direct calls behave
// exactly as before registration and never touch the registry.
//
//	var NewCounter = di.Provide[func() *Counter](reg, "svc.Counter", di.AsSingleton())(
//	    func() *Counter { return &Counter{} },
//	)
//
// Applying a decorator again, or one for the same name, replaces the
// previous registration.
func Provide[F any](r *Registry, name string, opts ...RegisterOption) func(F) F {
	return func(constructor F) F {
		r.Register(name, constructor, opts...)
		return constructor
	}
}
