// Package revocation records revoked token ids (the "jti" claim) until
// they would no longer matter.
//
// A token carries no expiry of its own, so a revocation entry lives for a
// configured TTL and is then forgotten. Backends:
//
//   - memory: sharded in-process map with a background expiry sweep
//   - badger: embedded badger/v3 database, entries expire natively
//   - redis: SET with EX, shared between server instances
//   - none: revocation disabled, every lookup reports false
//
// All backends are safe for concurrent use.
package revocation
