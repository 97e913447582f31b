package redisserver

import (
	"bufio"
	"context"
	"encoding/hex"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/token"
)

const testUID = "a779384b-ed4a-441a-95b6-577caeeec081"

func startServer(t *testing.T, cfg Config) string {
	t.Helper()
	key, _ := hex.DecodeString("abbadabad0000000abbadabad0000000")
	iss, err := token.New(key)
	if err != nil {
		t.Fatal(err)
	}
	store := revocation.NewMemory(4, 0)
	t.Cleanup(func() { store.Close() })
	tokens := service.NewTokenService(iss, store, &service.TokenServiceConfig{Logger: logger.Discard()})

	srv := New(cfg, tokens, logger.Discard())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		if err := <-done; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	})
	return ln.Addr().String()
}

func newClient(t *testing.T, addr, password string) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		Protocol:        2,
		DisableIdentity: true,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestServer_TokenFlow(t *testing.T) {
	addr := startServer(t, Config{})
	rdb := newClient(t, addr, "")
	ctx := context.Background()

	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("PING error = %v", err)
	}

	tok, err := rdb.Do(ctx, "TM.MINT", testUID, "42").Text()
	if err != nil {
		t.Fatalf("TM.MINT error = %v", err)
	}
	if len(tok) != token.Len {
		t.Fatalf("len(token) = %d, want %d", len(tok), token.Len)
	}

	claims, err := rdb.Do(ctx, "TM.VALIDATE", tok).Slice()
	if err != nil {
		t.Fatalf("TM.VALIDATE error = %v", err)
	}
	if len(claims) != 3 || claims[0] != testUID || claims[2] != int64(42) {
		t.Errorf("TM.VALIDATE = %v", claims)
	}

	inspected, err := rdb.Do(ctx, "TM.INSPECT", tok).Slice()
	if err != nil {
		t.Fatalf("TM.INSPECT error = %v", err)
	}
	if inspected[1] != claims[1] {
		t.Errorf("TM.INSPECT jti = %v, want %v", inspected[1], claims[1])
	}

	ttl, err := rdb.Do(ctx, "TM.REVOKE", tok).Int64()
	if err != nil {
		t.Fatalf("TM.REVOKE error = %v", err)
	}
	if ttl != -1 {
		t.Errorf("TM.REVOKE ttl = %d, want -1", ttl)
	}

	err = rdb.Do(ctx, "TM.VALIDATE", tok).Err()
	if err == nil || !strings.Contains(err.Error(), "TM-TOKN-4011") {
		t.Errorf("TM.VALIDATE after revoke error = %v, want TM-TOKN-4011", err)
	}
}

func TestServer_Errors(t *testing.T) {
	addr := startServer(t, Config{})
	rdb := newClient(t, addr, "")
	ctx := context.Background()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"bad uid", []any{"TM.MINT", "nope"}, "TM-TOKN-4000"},
		{"bad cap", []any{"TM.MINT", testUID, "300"}, "TM-ARG-4001"},
		{"malformed", []any{"TM.VALIDATE", "abc"}, "TM-TOKN-4001"},
		{"forged", []any{"TM.VALIDATE", token.Template + strings.Repeat("A", token.Len-len(token.Template))}, "TM-TOKN-40"},
		{"revoke forged", []any{"TM.REVOKE", "abc"}, "TM-TOKN-4001"},
		{"arity", []any{"TM.VALIDATE"}, "wrong number of arguments"},
		{"unknown", []any{"GET", "k"}, "unknown command"},
		{"auth unset", []any{"AUTH", "pw"}, "without any password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rdb.Do(ctx, tt.args...).Err()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Do(%v) error = %v, want %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestServer_Auth(t *testing.T) {
	addr := startServer(t, Config{Password: "s3cret"})
	ctx := context.Background()

	anon := newClient(t, addr, "")
	if err := anon.Ping(ctx).Err(); err != nil {
		t.Fatalf("PING without auth error = %v", err)
	}
	err := anon.Do(ctx, "TM.MINT", testUID).Err()
	if err == nil || !strings.HasPrefix(err.Error(), "NOAUTH") {
		t.Fatalf("TM.MINT without auth error = %v, want NOAUTH", err)
	}

	wrong := newClient(t, addr, "guess")
	if err := wrong.Ping(ctx).Err(); err == nil || !strings.Contains(err.Error(), "WRONGPASS") {
		t.Fatalf("connect with wrong password error = %v, want WRONGPASS", err)
	}

	authed := newClient(t, addr, "s3cret")
	if err := authed.Do(ctx, "TM.MINT", testUID, "1").Err(); err != nil {
		t.Fatalf("TM.MINT with auth error = %v", err)
	}
}

func TestServer_RateLimit(t *testing.T) {
	addr := startServer(t, Config{CommandsPerSecond: 1})
	rdb := newClient(t, addr, "")
	ctx := context.Background()

	// The HELLO probe on connect spends the single token.
	var limited bool
	for range 5 {
		if err := rdb.Ping(ctx).Err(); err != nil && strings.Contains(err.Error(), "TM-SYS-4290") {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("no command was rate limited")
	}
}

func TestServer_RawProtocol(t *testing.T) {
	addr := startServer(t, Config{})
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	br := bufio.NewReader(conn)

	send := func(s string) string {
		t.Helper()
		if _, err := conn.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read reply to %q: %v", s, err)
		}
		return line
	}

	if got := send("PING\r\n"); got != "+PONG\r\n" {
		t.Errorf("inline PING = %q", got)
	}
	if got := send("COMMAND DOCS\r\n"); got != "*0\r\n" {
		t.Errorf("COMMAND DOCS = %q", got)
	}
	if got := send("QUIT\r\n"); got != "+OK\r\n" {
		t.Errorf("QUIT = %q", got)
	}
	if _, err := br.ReadByte(); err == nil {
		t.Error("connection still open after QUIT")
	}
}

func TestServer_ProtocolErrorCloses(t *testing.T) {
	addr := startServer(t, Config{})
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("*1\r\n:1\r\n")); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "-ERR resp: protocol error") {
		t.Fatalf("reply = %q, %v", line, err)
	}
	if _, err := br.ReadByte(); err == nil {
		t.Error("connection still open after protocol error")
	}
}
