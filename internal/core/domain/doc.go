// Package domain defines the service-level model around minted tokens.
//
//   - errors.go: coded errors and the mapping from pkg/token errors
//   - grant.go: user identifiers and capability bitsets
//
// Nothing here performs I/O.
package domain
