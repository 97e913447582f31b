// Package keyring loads the token signing key and keeps it in memory that
// is locked against swapping and excluded from core dumps where the
// platform allows it.
//
// The key is given as hex, either in a file (token.key_file) or inline
// (token.key_hex, meant for development). With derivation enabled the hex
// is input key material of any length of at least 16 bytes, and the AES
// key is HKDF-SHA256(ikm, salt, info).
package keyring
