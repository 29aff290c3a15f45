// Package config loads typed configuration from environment variables and
// YAML files.
//
// Load parses the environment into a struct annotated with `env` tags and
// caches the result per type, which suits process-wide settings such as the
// registry service configuration:
//
//	var cfg registryd.Config
//	config.MustLoad(&cfg)
//
// LoadFile is used for per-embedding settings. It decodes YAML over a struct
// already holding defaults and then lets environment variables override any
// field:
//
//	cfg := sessionguard.DefaultConfig()
//	if err := config.LoadFile("sessionguard.yaml", &cfg); err != nil {
//	    return err
//	}
//
// Fields with envDefault tags are reset to the default whenever the variable
// is unset, so structs passed to LoadFile should keep their defaults in Go
// code rather than in tags.
package config
