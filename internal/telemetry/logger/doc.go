// Package logger provides structured logging for tokmint.
//
// Files:
//
//   - logger.go: slog configuration, dynamic level, global default
//   - context.go: logger and request ID propagation through context
//   - redact.go: masking of minted tokens and key material
//
// Minted tokens are recognised by their constant header prefix and
// reduced to a short head and tail. Attributes whose key names suggest
// secrets (key, secret, password, authorization) are replaced entirely.
package logger
