package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/tokmint-go/pkg/token"
)

// BenchUserID is the identifier minted by RunBench when none is given.
const BenchUserID = "a779384b-ed4a-441a-95b6-577caeeec081"

// BenchConfig configures a throughput run.
type BenchConfig struct {
	Workers    int
	Iterations int // Per worker
	UserID     string
}

// BenchResult summarizes a throughput run. Ops counts mints and
// validations separately.
type BenchResult struct {
	Engine     string        `json:"engine" yaml:"engine"`
	Workers    int           `json:"workers" yaml:"workers"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Ops        int64         `json:"ops" yaml:"ops"`
	Failures   int64         `json:"failures" yaml:"failures"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
	OpsPerSec  float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
}

// RunBench mints and validates Iterations tokens on each of Workers
// goroutines, with capability i&0xff on iteration i. A mint error or a
// token that fails validation counts as a failure. RunBench stops early
// when ctx is done.
func RunBench(ctx context.Context, iss *token.Issuer, cfg BenchConfig) (BenchResult, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.UserID == "" {
		cfg.UserID = BenchUserID
	}

	fails := make([]int64, cfg.Workers)
	done := make([]int64, cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			var buf token.Buffer
			for i := 0; i < cfg.Iterations; i++ {
				if i&0x3ff == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if err := iss.MintInto(&buf, cfg.UserID, byte(i)); err != nil || !iss.Validate(buf.Bytes()) {
					fails[w]++
				}
				done[w]++
			}
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)

	res := BenchResult{
		Engine:     string(iss.Engine()),
		Workers:    cfg.Workers,
		Iterations: cfg.Iterations,
		Elapsed:    elapsed,
	}
	for w := range done {
		res.Ops += 2 * done[w]
		res.Failures += fails[w]
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(res.Ops) / secs
	}
	return res, err
}
