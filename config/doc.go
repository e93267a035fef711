// Package config loads microdi configuration with Viper.
//
// Values come from a config file (<app>.yml, microdi.yml or config.yml, in
// the working directory or config/), an optional .env file (godotenv) and
// the process environment, in that order of increasing precedence.
// Environment keys carry the app prefix: BILLING_LOGGING_LEVEL sets
// logging.level for app "billing". Besides name and logging, the config can
// declare injection bindings, which are validated while loading:
//
//	name: billing
//	logging:
//	  level: debug
//	injection:
//	  bindings:
//	    - key: client
//	      name: svc.FancyClient
//	      args: ["apikey"]
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("billing", &cfg); err != nil { ... }
//
// Applications that only need the bindings can use LoadInjection.
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
