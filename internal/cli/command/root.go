package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokmint-go/internal/cli/output"
	"github.com/yndnr/tokmint-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tokmint-cli",
		Usage:   "mint, validate and inspect fixed-format tokens",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: table, json, yaml",
				Value:   string(output.FormatTable),
				EnvVars: []string{"TOKMINT_OUTPUT"},
			},
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
		Commands: []*cli.Command{
			KeygenCommand(),
			MintCommand(),
			ValidateCommand(),
			InspectCommand(),
			BenchCommand(),
			RemoteCommand(),
			VersionCommand(),
		},
		HideHelpCommand: true,
	}
}

// emit writes data to the app's writer in the selected format.
func emit(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// tokenArg returns the first argument, or reads one line from stdin
// when the argument is missing or "-".
func tokenArg(c *cli.Context) (string, error) {
	arg := c.Args().First()
	if arg != "" && arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	if c.App.Reader == nil {
		return "", errors.New("token argument is required")
	}
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read token from stdin: %w", err)
	}
	tok := strings.TrimSpace(line)
	if tok == "" {
		return "", errors.New("token argument is required")
	}
	return tok, nil
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "show build information",
		Action: func(c *cli.Context) error {
			return emit(c, buildinfo.Get())
		},
	}
}
