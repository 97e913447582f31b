package benchmark

import (
	"context"
	"encoding/hex"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
	"github.com/yndnr/tokmint-go/pkg/token"
)

// RevocationCounts are the store sizes revocation lookups run against.
var RevocationCounts = []int{1000, 10000, 100000}

const benchKey = "abbadabad0000000abbadabad0000000"

func newIssuer(b *testing.B, opts ...token.Option) *token.Issuer {
	b.Helper()
	key, err := hex.DecodeString(benchKey)
	if err != nil {
		b.Fatal(err)
	}
	iss, err := token.New(key, opts...)
	if err != nil {
		b.Fatalf("token.New() error = %v", err)
	}
	return iss
}

// engines lists the engines available on this machine.
func engines() []aesprf.Type {
	types := []aesprf.Type{aesprf.TypeSoftware}
	if aesprf.HardwareAvailable() {
		types = append(types, aesprf.TypeHardware)
	}
	return types
}

// mintN mints count tokens with distinct capabilities.
func mintN(b *testing.B, iss *token.Issuer, count int) []token.Buffer {
	b.Helper()
	toks := make([]token.Buffer, count)
	for i := range toks {
		if err := iss.MintInto(&toks[i], service.BenchUserID, byte(i)); err != nil {
			b.Fatalf("MintInto() error = %v", err)
		}
	}
	return toks
}

// prefill revokes count synthetic jtis.
func prefill(b *testing.B, store revocation.Store, count int) []string {
	b.Helper()
	ctx := context.Background()
	jtis := make([]string, count)
	for i := range jtis {
		jtis[i] = fmt.Sprintf("%014x", i)
		if err := store.Revoke(ctx, jtis[i], time.Hour); err != nil {
			b.Fatalf("Revoke() error = %v", err)
		}
	}
	return jtis
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

func runWithCounts(b *testing.B, counts []int, fn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("entries_%d", count), func(b *testing.B) {
			fn(b, count)
		})
	}
}
