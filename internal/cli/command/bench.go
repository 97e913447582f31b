package command

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokmint-go/internal/cli/output"
	"github.com/yndnr/tokmint-go/internal/core/service"
)

// defaultBenchKey is the well-known test key used when no key is given.
const defaultBenchKey = "abbadabad0000000abbadabad0000000"

// BenchCommand runs the mint+validate throughput loop.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "measure mint+validate throughput",
		Flags: append(keyFlags(),
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent workers", Value: runtime.NumCPU()},
			&cli.IntFlag{Name: "iterations", Aliases: []string{"n"}, Usage: "mint+validate pairs per worker", Value: 1_000_000},
			&cli.StringFlag{Name: "uid", Usage: "identifier to mint for", Value: service.BenchUserID},
			&cli.BoolFlag{Name: "no-spinner", Usage: "do not animate while running"},
		),
		Action: func(c *cli.Context) error {
			if c.String("key") == "" && c.String("key-file") == "" {
				if err := c.Set("key", defaultBenchKey); err != nil {
					return err
				}
			}
			iss, err := loadIssuer(c)
			if err != nil {
				return err
			}

			var spin *output.Spinner
			if !c.Bool("no-spinner") {
				spin = output.NewSpinner(c.App.ErrWriter, "running")
				spin.Start()
			}
			res, err := service.RunBench(c.Context, iss, service.BenchConfig{
				Workers:    c.Int("workers"),
				Iterations: c.Int("iterations"),
				UserID:     c.String("uid"),
			})
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}

			if err := emit(c, res); err != nil {
				return err
			}
			if res.Failures > 0 {
				return cli.Exit(fmt.Sprintf("warning: %d failures (expected 0)", res.Failures), 1)
			}
			return nil
		},
	}
}
