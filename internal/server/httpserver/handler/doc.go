// Package handler implements the tokmint HTTP API.
//
//	POST /v1/tokens           mint a token
//	POST /v1/tokens/validate  check a token
//	POST /v1/tokens/revoke    revoke a token
//	GET  /health              liveness
//	GET  /ready               readiness (revocation store reachable)
//
// Every JSON response uses the Response envelope. Error statuses come
// from the domain error code.
package handler
