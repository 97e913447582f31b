package keyring

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/token"
)

var (
	// ErrNoKey is returned when neither a key file nor inline hex is set.
	ErrNoKey = errors.New("keyring: no key configured")

	// ErrKeyFormat is returned for key material that is not valid hex of
	// the expected length.
	ErrKeyFormat = errors.New("keyring: invalid key format")

	// ErrClosed is returned by Bytes after Close.
	ErrClosed = errors.New("keyring: key closed")
)

// MinIKMSize is the shortest input key material accepted for derivation.
const MinIKMSize = token.KeySize

// Config locates the key.
type Config struct {
	KeyFile string       `koanf:"key_file"`
	KeyHex  string       `koanf:"key_hex"`
	Derive  DeriveConfig `koanf:"derive"`
}

// DeriveConfig enables HKDF derivation of the AES key.
type DeriveConfig struct {
	Enabled bool   `koanf:"enabled"`
	Salt    string `koanf:"salt"`
	Info    string `koanf:"info"`
}

// Key holds the 16-byte signing key.
type Key struct {
	mu     sync.Mutex
	mem    *secureBuffer
	source string
}

// Load resolves cfg into a Key. The file takes precedence over inline hex.
// log receives warnings about permissive file modes and weak keys; nil
// uses logger.Default().
func Load(cfg Config, log logger.Logger) (*Key, error) {
	if log == nil {
		log = logger.Default()
	}

	text, source, err := readMaterial(cfg, log)
	if err != nil {
		return nil, err
	}
	material, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: not hex", ErrKeyFormat, source)
	}
	defer wipe(material)

	mem, err := newSecureBuffer(token.KeySize)
	if err != nil {
		return nil, fmt.Errorf("keyring: allocate: %w", err)
	}

	if cfg.Derive.Enabled {
		if len(material) < MinIKMSize {
			mem.free()
			return nil, fmt.Errorf("%w: %s: derivation needs at least %d bytes, got %d",
				ErrKeyFormat, source, MinIKMSize, len(material))
		}
		r := hkdf.New(sha256.New, material, []byte(cfg.Derive.Salt), []byte(cfg.Derive.Info))
		if _, err := io.ReadFull(r, mem.data); err != nil {
			mem.free()
			return nil, fmt.Errorf("keyring: derive: %w", err)
		}
	} else {
		if len(material) != token.KeySize {
			mem.free()
			return nil, fmt.Errorf("%w: %s: want %d hex characters, got %d",
				ErrKeyFormat, source, 2*token.KeySize, len(text))
		}
		copy(mem.data, material)
	}

	if token.IsWeakKey(mem.data) {
		log.Warn("signing key is all-zero; generate one with tokmint-cli keygen", "source", source)
	}
	if !mem.locked {
		log.Debug("key memory is not locked on this platform", "source", source)
	}
	return &Key{mem: mem, source: source}, nil
}

// FromBytes copies raw key bytes into a Key. It is meant for tests and
// for the CLI, where the key arrives on the command line.
func FromBytes(raw []byte) (*Key, error) {
	if len(raw) != token.KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrKeyFormat, token.KeySize, len(raw))
	}
	mem, err := newSecureBuffer(token.KeySize)
	if err != nil {
		return nil, fmt.Errorf("keyring: allocate: %w", err)
	}
	copy(mem.data, raw)
	return &Key{mem: mem, source: "bytes"}, nil
}

// ParseHex decodes a 32-character hex key.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	key, err := hex.DecodeString(s)
	if err != nil || len(key) != token.KeySize {
		return nil, fmt.Errorf("%w: want %d hex characters", ErrKeyFormat, 2*token.KeySize)
	}
	return key, nil
}

func readMaterial(cfg Config, log logger.Logger) (text, source string, err error) {
	switch {
	case cfg.KeyFile != "":
		info, err := os.Stat(cfg.KeyFile)
		if err != nil {
			return "", "", fmt.Errorf("keyring: %w", err)
		}
		if info.Mode().Perm()&0o077 != 0 {
			log.Warn("key file is readable by group or others",
				"path", cfg.KeyFile, "mode", info.Mode().Perm().String())
		}
		raw, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return "", "", fmt.Errorf("keyring: %w", err)
		}
		defer wipe(raw)
		return strings.TrimSpace(string(raw)), cfg.KeyFile, nil
	case cfg.KeyHex != "":
		return strings.TrimSpace(cfg.KeyHex), "key_hex", nil
	default:
		return "", "", ErrNoKey
	}
}

// Bytes returns the key. The slice aliases locked memory and must not be
// retained past Close.
func (k *Key) Bytes() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.mem == nil {
		return nil, ErrClosed
	}
	return k.mem.data, nil
}

// Source names where the key came from, for logging.
func (k *Key) Source() string { return k.source }

// Locked reports whether the key memory is page-locked.
func (k *Key) Locked() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mem != nil && k.mem.locked
}

// Close zeroes and releases the key memory.
func (k *Key) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.mem == nil {
		return nil
	}
	err := k.mem.free()
	k.mem = nil
	return err
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
