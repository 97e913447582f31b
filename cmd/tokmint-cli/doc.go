// Package main provides the entry point for tokmint-cli.
//
// Usage:
//
//	tokmint-cli keygen
//	tokmint-cli mint --key $KEY --uid a779384b-ed4a-441a-95b6-577caeeec081 --cap 0x03
//	tokmint-cli validate --key $KEY TOKEN
//	tokmint-cli inspect TOKEN
//	tokmint-cli bench --workers 8 --iterations 1000000
//	tokmint-cli remote --server https://tokmint:5080 mint --uid ...
//
// Output defaults to a table; -o json and -o yaml are also accepted.
package main
