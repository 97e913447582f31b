// Package main provides the entry point for tokmint-server.
//
// tokmint-server exposes token mint, validate and revoke over HTTP(S).
// Configuration comes from an optional YAML file (--config) and TOKMINT_*
// environment variables, in that order of precedence over the defaults.
package main
