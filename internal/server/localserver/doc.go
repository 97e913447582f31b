// Package localserver serves the HTTP API on a Unix domain socket.
//
// The socket is created with mode 0600, so only the server's user (and
// root) can reach it. It carries the same routes as the TCP listener and
// lets operators use tokmint-cli on the host without exposing a port:
//
//	tokmint-cli remote --server unix:///run/tokmint/tokmint.sock health
package localserver
