package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokmint-go/internal/cli/connection"
	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/infra/tlsroots"
	"github.com/yndnr/tokmint-go/internal/server/httpserver/handler"
)

// DefaultServer is the server address used when --server is not set.
const DefaultServer = "http://127.0.0.1:5080"

// RemoteCommand groups the commands that call a running server.
func RemoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "call a tokmint-server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "server base URL",
				Value:   DefaultServer,
				EnvVars: []string{"TOKMINT_SERVER"},
			},
			&cli.StringFlag{Name: "ca-file", Usage: "extra CA certificate (PEM) to trust"},
			&cli.BoolFlag{Name: "insecure", Usage: "skip TLS certificate verification"},
			&cli.DurationFlag{Name: "timeout", Usage: "request timeout", Value: connection.DefaultTimeout},
		},
		Subcommands: []*cli.Command{
			remoteMintCommand(),
			remoteValidateCommand(),
			remoteRevokeCommand(),
			remoteHealthCommand(),
		},
	}
}

func newClient(c *cli.Context) (*connection.HTTPClient, error) {
	pool := tlsroots.NewPool()
	if path := c.String("ca-file"); path != "" {
		if err := pool.AddCertFile(path); err != nil {
			return nil, err
		}
	}
	return connection.NewHTTPClient(c.String("server"),
		connection.WithTLSConfig(pool.ClientConfig(c.Bool("insecure"))),
		connection.WithTimeout(c.Duration("timeout")),
	), nil
}

func remoteMintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "mint a token on the server",
		Flags: mintFlags(),
		Action: func(c *cli.Context) error {
			capability, err := domain.ParseCapability(c.String("cap"), c.Bool("hex"))
			if err != nil {
				return err
			}
			client, err := newClient(c)
			if err != nil {
				return err
			}

			n := int(capability)
			var resp handler.MintTokenResponse
			req := handler.MintTokenRequest{UserID: c.String("uid"), Capability: &n}
			if err := client.Post(c.Context, "/v1/tokens", req, &resp); err != nil {
				return err
			}
			if c.Bool("quiet") {
				_, err := c.App.Writer.Write([]byte(resp.Token + "\n"))
				return err
			}
			return emit(c, resp)
		},
	}
}

func remoteValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate a token on the server",
		ArgsUsage: "TOKEN|-",
		Action: func(c *cli.Context) error {
			tok, err := tokenArg(c)
			if err != nil {
				return err
			}
			client, err := newClient(c)
			if err != nil {
				return err
			}

			var resp handler.ValidateTokenResponse
			if err := client.Post(c.Context, "/v1/tokens/validate", handler.TokenRequest{Token: tok}, &resp); err != nil {
				return err
			}
			if err := emit(c, resp); err != nil {
				return err
			}
			if !resp.Valid {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func remoteRevokeCommand() *cli.Command {
	return &cli.Command{
		Name:      "revoke",
		Usage:     "revoke a token on the server",
		ArgsUsage: "TOKEN|-",
		Action: func(c *cli.Context) error {
			tok, err := tokenArg(c)
			if err != nil {
				return err
			}
			client, err := newClient(c)
			if err != nil {
				return err
			}

			var resp handler.RevokeTokenResponse
			if err := client.Post(c.Context, "/v1/tokens/revoke", handler.TokenRequest{Token: tok}, &resp); err != nil {
				return err
			}
			return emit(c, resp)
		},
	}
}

func remoteHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check server readiness",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}
			var resp handler.HealthResponse
			if err := client.Get(c.Context, "/ready", &resp); err != nil {
				return err
			}
			return emit(c, resp)
		},
	}
}
