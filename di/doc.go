// Package di is a small name-keyed dependency injection registry.
//
// Constructors are registered under a name, either transient (constructed on
// every resolution) or singleton (constructed once, then cached). Functions
// taking keyword Params can be decorated so that missing parameters are
// resolved from the registry on every call.
//
// # Registration
//
//	reg := di.NewRegistry()
//	newClient := di.Provide[func(string) *FancyClient](reg, "svc.FancyClient", di.AsSingleton())(NewFancyClient)
//
// # Resolution
//
//	client, err := di.Resolve[*FancyClient](reg, "svc.FancyClient", "apikey")
//
// # Injection
//
//	fetch := di.Inject[int](reg, di.Bind("client", "svc.FancyClient", "apikey"))(
//	    func(ctx context.Context, p di.Params) (int, error) {
//	        return di.MustArg[*FancyClient](p, "client").Request("url"), nil
//	    },
//	)
//	n, err := fetch(ctx, nil)
//
// Registries are safe for concurrent use and a singleton constructor runs at
// most once. Cycles are reported as CYCLIC_DEPENDENCY when constructors pass
// the context they receive on to nested resolutions, including cycles split
// across goroutines that construct mutually dependent singletons at the same
// time.
package di
