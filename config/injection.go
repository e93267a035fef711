package config

// InjectionConfig declares keyword bindings in configuration instead of code.
//
//	injection:
//	  bindings:
//	    - key: client
//	      name: svc.FancyClient
//	      args: ["apikey"]
//	    - key: counter
//	      name: svc.Counter
//
// Bindings is a list so the declaration order survives decoding.
type InjectionConfig struct {
	Bindings []BindingConfig `yaml:"bindings" mapstructure:"bindings" validate:"unique=Key,dive"`
}

// BindingConfig maps the keyword parameter Key to the implementation
// registered as Name. Args are handed to the constructor on resolution.
type BindingConfig struct {
	Key  string `yaml:"key" mapstructure:"key" validate:"required"`
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	Args []any  `yaml:"args" mapstructure:"args"`
}

// Lookup returns the binding declared for key.
func (c InjectionConfig) Lookup(key string) (BindingConfig, bool) {
	for _, b := range c.Bindings {
		if b.Key == key {
			return b, true
		}
	}
	return BindingConfig{}, false
}
