// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Maps loaded with LoadMap after Load (command-line flags)
//  2. Environment variables (TOKMINT_ prefix)
//  3. YAML configuration file
//  4. Defaults loaded with LoadDefaults
//
// Environment names are matched against the known keys of the target
// struct, so TOKMINT_TOKEN_KEY_FILE resolves to token.key_file rather
// than token.key.file.
//
// Watcher reports writes to a configuration file so callers can re-read
// the settings that are safe to change at runtime.
package confloader
