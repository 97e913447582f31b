package redisserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/token"
)

type commandFunc func(ctx context.Context, c *Conn, args [][]byte)

type command struct {
	fn commandFunc
	// minArgs and maxArgs count the command name.
	minArgs, maxArgs int
	auth             bool
}

// CommandHandler dispatches commands to the token service.
type CommandHandler struct {
	tokens   *service.TokenService
	password []byte
	logger   logger.Logger
	commands map[string]command
}

// NewCommandHandler creates a handler. An empty password disables AUTH.
func NewCommandHandler(tokens *service.TokenService, password string, log logger.Logger) *CommandHandler {
	if log == nil {
		log = logger.Default()
	}
	h := &CommandHandler{tokens: tokens, logger: log}
	if password != "" {
		h.password = []byte(password)
	}
	h.commands = map[string]command{
		"PING":        {fn: h.ping, minArgs: 1, maxArgs: 2},
		"ECHO":        {fn: h.echo, minArgs: 2, maxArgs: 2},
		"AUTH":        {fn: h.authenticate, minArgs: 2, maxArgs: 3},
		"QUIT":        {fn: h.quit, minArgs: 1, maxArgs: 1},
		"COMMAND":     {fn: h.commandInfo, minArgs: 1, maxArgs: MaxArrayLen},
		"TM.MINT":     {fn: h.mint, minArgs: 2, maxArgs: 3, auth: true},
		"TM.VALIDATE": {fn: h.validate, minArgs: 2, maxArgs: 2, auth: true},
		"TM.REVOKE":   {fn: h.revoke, minArgs: 2, maxArgs: 2, auth: true},
		"TM.INSPECT":  {fn: h.inspect, minArgs: 2, maxArgs: 2, auth: true},
	}
	return h
}

// Handle runs one command and writes its reply to c.
func (h *CommandHandler) Handle(ctx context.Context, c *Conn, args [][]byte) {
	name := commandName(args[0])
	cmd, ok := h.commands[name]
	if !ok {
		c.w.Error("ERR unknown command '" + string(args[0]) + "'")
		return
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		c.w.Error("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
		return
	}
	if cmd.auth && h.password != nil && !c.authed.Load() {
		c.w.Error("NOAUTH Authentication required.")
		return
	}
	cmd.fn(ctx, c, args)
}

// writeError renders err as "ERR <code> <message>" for domain errors.
func writeError(w *Writer, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg := de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		w.Error("ERR " + de.Code + " " + msg)
		return
	}
	w.Error("ERR " + domain.ErrInternalServer.Code + " " + domain.ErrInternalServer.Message)
}

func writeClaims(w *Writer, cl token.Claims) {
	w.Array(3)
	w.Bulk(cl.Subject)
	w.Bulk(cl.JTI)
	w.Int(int64(cl.Capability))
}

func (h *CommandHandler) ping(_ context.Context, c *Conn, args [][]byte) {
	if len(args) == 2 {
		c.w.Bulk(string(args[1]))
		return
	}
	c.w.Simple("PONG")
}

func (h *CommandHandler) echo(_ context.Context, c *Conn, args [][]byte) {
	c.w.Bulk(string(args[1]))
}

func (h *CommandHandler) quit(_ context.Context, c *Conn, _ [][]byte) {
	c.quit = true
	c.w.Simple("OK")
}

// commandInfo answers COMMAND and COMMAND DOCS, which interactive
// clients send on connect.
func (h *CommandHandler) commandInfo(_ context.Context, c *Conn, _ [][]byte) {
	c.w.Array(0)
}

func (h *CommandHandler) authenticate(_ context.Context, c *Conn, args [][]byte) {
	if h.password == nil {
		c.w.Error("ERR AUTH called without any password configured")
		return
	}
	// AUTH password or AUTH username password; the username is ignored.
	pass := args[len(args)-1]
	if subtle.ConstantTimeCompare(pass, h.password) != 1 {
		c.authed.Store(false)
		h.logger.Warn("resp auth failed", "remote", c.RemoteAddr().String())
		c.w.Error("WRONGPASS invalid password")
		return
	}
	c.authed.Store(true)
	c.w.Simple("OK")
}

func (h *CommandHandler) mint(ctx context.Context, c *Conn, args [][]byte) {
	var capability domain.Capability
	if len(args) == 3 {
		v, err := domain.ParseCapability(string(args[2]), false)
		if err != nil {
			writeError(c.w, err)
			return
		}
		capability = v
	}
	resp, err := h.tokens.Mint(ctx, &service.MintRequest{UserID: string(args[1]), Capability: capability})
	if err != nil {
		writeError(c.w, err)
		return
	}
	c.w.Bulk(resp.Token)
}

func (h *CommandHandler) validate(ctx context.Context, c *Conn, args [][]byte) {
	resp, err := h.tokens.Validate(ctx, &service.ValidateRequest{Token: string(args[1])})
	if err != nil {
		writeError(c.w, err)
		return
	}
	if !resp.Valid {
		writeError(c.w, reasonError(resp.Reason))
		return
	}
	writeClaims(c.w, resp.Claims)
}

func (h *CommandHandler) revoke(ctx context.Context, c *Conn, args [][]byte) {
	resp, err := h.tokens.Revoke(ctx, &service.RevokeRequest{Token: string(args[1])})
	if err != nil {
		writeError(c.w, err)
		return
	}
	if resp.ExpiresAt.IsZero() {
		c.w.Int(-1)
		return
	}
	c.w.Int(int64(time.Until(resp.ExpiresAt).Round(time.Second) / time.Second))
}

func (h *CommandHandler) inspect(_ context.Context, c *Conn, args [][]byte) {
	claims, err := service.Inspect(string(args[1]))
	if err != nil {
		writeError(c.w, err)
		return
	}
	writeClaims(c.w, claims)
}

func reasonError(code string) *domain.DomainError {
	switch code {
	case domain.ErrTokenMalformed.Code:
		return domain.ErrTokenMalformed
	case domain.ErrTokenRevoked.Code:
		return domain.ErrTokenRevoked
	default:
		return domain.ErrTokenInvalid
	}
}
