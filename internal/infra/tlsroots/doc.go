// Package tlsroots builds the TLS configuration of the HTTP listener and
// of the CLI's HTTP client.
//
//   - roots.go: trusted CA pools (system roots plus PEM files)
//   - watcher.go: serving certificate reloaded when its files change
//
// The server presents the Watcher's certificate and, when a client CA
// file is configured, requires client certificates signed by it.
package tlsroots
