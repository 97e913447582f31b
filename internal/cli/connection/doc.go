// Package connection is the tokmint-cli HTTP client for a tokmint-server.
//
// Responses are unwrapped from the server's JSON envelope; error
// envelopes become *APIError carrying the domain error code.
package connection
