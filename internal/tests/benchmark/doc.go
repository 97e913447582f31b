// Package benchmark holds throughput benchmarks for the token core, the
// revocation backends and the full service path.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare engines or backends across runs:
//
//	go test -bench=Engine -benchmem -count=5 ./internal/tests/benchmark/... | tee bench.txt
//	benchstat old.txt new.txt
package benchmark
