package command

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/infra/keyring"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
	"github.com/yndnr/tokmint-go/pkg/token"
)

func keyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "key",
			Usage:   "signing key as 32 hex characters",
			EnvVars: []string{"TOKMINT_KEY"},
		},
		&cli.StringFlag{
			Name:    "key-file",
			Usage:   "file holding the signing key in hex",
			EnvVars: []string{"TOKMINT_KEY_FILE"},
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "block cipher engine: auto, hardware, software",
			Value: "auto",
		},
	}
}

// loadIssuer builds an Issuer from the key flags. Key warnings go to
// the app's error writer.
func loadIssuer(c *cli.Context) (*token.Issuer, error) {
	engine, forced, err := aesprf.ParseType(c.String("engine"))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: "warn", Format: "text", Output: c.App.ErrWriter})
	if err != nil {
		return nil, err
	}
	key, err := keyring.Load(keyring.Config{
		KeyFile: c.String("key-file"),
		KeyHex:  c.String("key"),
	}, log)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	raw, err := key.Bytes()
	if err != nil {
		return nil, err
	}
	var opts []token.Option
	if forced {
		opts = append(opts, token.WithEngine(engine))
	}
	return token.New(raw, opts...)
}

func localService(c *cli.Context) (*service.TokenService, error) {
	iss, err := loadIssuer(c)
	if err != nil {
		return nil, err
	}
	return service.NewTokenService(iss, nil, &service.TokenServiceConfig{Logger: logger.Discard()}), nil
}

// KeygenResult is the output of keygen.
type KeygenResult struct {
	Key    string `json:"key" yaml:"key"`
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// KeygenCommand prints a random key.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "generate a random signing key",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "uid", Usage: "also print a random user identifier"},
		},
		Action: func(c *cli.Context) error {
			key, err := token.GenerateKey()
			if err != nil {
				return err
			}
			res := KeygenResult{Key: hex.EncodeToString(key)}
			if c.Bool("uid") {
				res.UserID = domain.NewUserID()
			}
			return emit(c, res)
		},
	}
}

// MintResult is the output of mint.
type MintResult struct {
	Token      string `json:"token" yaml:"token"`
	Subject    string `json:"sub" yaml:"sub"`
	JTI        string `json:"jti" yaml:"jti"`
	Capability int    `json:"capability" yaml:"capability"`
}

// MintCommand mints a token locally.
func MintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "mint a token",
		Flags: append(keyFlags(), mintFlags()...),
		Action: func(c *cli.Context) error {
			capability, err := domain.ParseCapability(c.String("cap"), c.Bool("hex"))
			if err != nil {
				return err
			}
			svc, err := localService(c)
			if err != nil {
				return err
			}
			resp, err := svc.Mint(c.Context, &service.MintRequest{UserID: c.String("uid"), Capability: capability})
			if err != nil {
				return err
			}
			if c.Bool("quiet") {
				_, err := fmt.Fprintln(c.App.Writer, resp.Token)
				return err
			}
			return emit(c, MintResult{
				Token:      resp.Token,
				Subject:    resp.Subject,
				JTI:        resp.JTI,
				Capability: int(resp.Capability),
			})
		},
	}
}

func mintFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "uid", Aliases: []string{"u"}, Usage: "user identifier (UUID)", Required: true},
		&cli.StringFlag{Name: "cap", Aliases: []string{"c"}, Usage: "capability byte, decimal or 0x hex", Value: "0"},
		&cli.BoolFlag{Name: "hex", Usage: "parse --cap as bare hex"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "print only the token"},
	}
}

// ValidateResult is the output of validate.
type ValidateResult struct {
	Valid  bool          `json:"valid" yaml:"valid"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Claims *token.Claims `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// ValidateCommand checks a token with the local key. It exits 1 for an
// invalid token.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate a token",
		ArgsUsage: "TOKEN|-",
		Flags:     keyFlags(),
		Action: func(c *cli.Context) error {
			tok, err := tokenArg(c)
			if err != nil {
				return err
			}
			svc, err := localService(c)
			if err != nil {
				return err
			}
			resp, err := svc.Validate(c.Context, &service.ValidateRequest{Token: tok})
			if err != nil {
				return err
			}

			res := ValidateResult{Valid: resp.Valid, Reason: resp.Reason}
			if resp.Valid {
				res.Claims = &resp.Claims
			}
			if err := emit(c, res); err != nil {
				return err
			}
			if !resp.Valid {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// InspectCommand decodes claims without verifying the tag.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "decode a token's claims without checking it",
		ArgsUsage: "TOKEN|-",
		Action: func(c *cli.Context) error {
			tok, err := tokenArg(c)
			if err != nil {
				return err
			}
			claims, err := service.Inspect(tok)
			if err != nil {
				return err
			}
			return emit(c, claims)
		},
	}
}
