// Package command defines the tokmint-cli commands using urfave/cli/v2.
//
// Local commands work with a key given by --key, --key-file or the
// TOKMINT_KEY environment variable:
//
//	keygen    print a fresh random key
//	mint      mint a token for an identifier
//	validate  check a token's tag
//	inspect   decode a token's claims without a key
//	bench     measure mint+validate throughput
//
// The remote group talks to a tokmint-server over HTTP(S).
package command
