// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/yndnr/tokmint-go/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/tokmint-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Values left unset fall back to what runtime/debug records in the binary.
package buildinfo
