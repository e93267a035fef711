package di

import "github.com/kbukum/microdi/config"

// BindingsFromConfig converts configured bindings into Bindings, keeping
// their declaration order.
func BindingsFromConfig(cfg config.InjectionConfig) []Binding {
	bindings := make([]Binding, 0, len(cfg.Bindings))
	for _, b := range cfg.Bindings {
		bindings = append(bindings, Bind(b.Key, b.Name, b.Args...))
	}
	return bindings
}
