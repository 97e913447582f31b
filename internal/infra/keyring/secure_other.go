//go:build !linux

package keyring

type secureBuffer struct {
	data   []byte
	locked bool
}

func newSecureBuffer(n int) (*secureBuffer, error) {
	return &secureBuffer{data: make([]byte, n)}, nil
}

func (b *secureBuffer) free() error {
	wipe(b.data)
	b.data = nil
	return nil
}
