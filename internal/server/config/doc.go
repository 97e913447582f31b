// Package config defines the tokmint-server configuration.
//
//   - spec.go: ServerConfig and its sections
//   - default.go: default values
//   - verify.go: validation run before the server starts
//   - sanitize.go: a copy safe to log
//
// Values are loaded by internal/infra/confloader from a YAML file and
// TOKMINT_ environment variables, on top of Default().
package config
