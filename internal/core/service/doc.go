// Package service provides the token operations exposed by the server
// and the CLI.
//
// TokenService sits between the transport layers and pkg/token: it
// canonicalizes identifiers, consults the revocation store, maps errors
// to domain codes and records metrics. It is safe for concurrent use.
package service
