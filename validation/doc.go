// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator and reports failures
// as INVALID_CONFIG errors keyed by config path.
//
//	type BindingConfig struct {
//	    Key  string `mapstructure:"key" validate:"required"`
//	    Name string `mapstructure:"name" validate:"required"`
//	}
//	err := validation.Validate(cfg)
package validation
