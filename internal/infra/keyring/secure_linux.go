//go:build linux

package keyring

import (
	"golang.org/x/sys/unix"
)

type secureBuffer struct {
	data   []byte
	region []byte
	locked bool
}

// newSecureBuffer maps a private anonymous page for n bytes, locks it and
// marks it MADV_DONTDUMP. A failed mlock (RLIMIT_MEMLOCK) is not fatal.
func newSecureBuffer(n int) (*secureBuffer, error) {
	size := unix.Getpagesize()
	for size < n {
		size += unix.Getpagesize()
	}
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	_ = unix.Madvise(region, unix.MADV_DONTDUMP)

	b := &secureBuffer{data: region[:n:n], region: region}
	b.locked = unix.Mlock(region) == nil
	return b, nil
}

func (b *secureBuffer) free() error {
	wipe(b.region)
	if b.locked {
		_ = unix.Munlock(b.region)
	}
	err := unix.Munmap(b.region)
	b.data, b.region = nil, nil
	return err
}
