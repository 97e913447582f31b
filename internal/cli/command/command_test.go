package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/server/httpserver"
	"github.com/yndnr/tokmint-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/token"
)

const (
	testKey = "abbadabad0000000abbadabad0000000"
	testUID = "a779384b-ed4a-441a-95b6-577caeeec081"
)

// run executes the CLI and returns stdout. Exit codes are reported as
// errors instead of terminating the test binary.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TOKMINT_KEY", "")
	t.Setenv("TOKMINT_KEY_FILE", "")
	t.Setenv("TOKMINT_SERVER", "")
	t.Setenv("TOKMINT_OUTPUT", "")

	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"tokmint-cli"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "", "-o", "json", "keygen", "--uid")
	if err != nil {
		t.Fatalf("keygen error = %v", err)
	}
	var res KeygenResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(res.Key) != 32 {
		t.Errorf("key = %q, want 32 hex chars", res.Key)
	}
	if len(res.UserID) != 36 {
		t.Errorf("user_id = %q, want canonical form", res.UserID)
	}
}

func TestMintValidateInspect(t *testing.T) {
	tok, err := run(t, "", "mint", "--key", testKey, "--uid", testUID, "--cap", "0x2a", "-q")
	if err != nil {
		t.Fatalf("mint error = %v", err)
	}
	tok = strings.TrimSpace(tok)
	if len(tok) != token.Len {
		t.Fatalf("len(token) = %d, want %d", len(tok), token.Len)
	}

	out, err := run(t, "", "-o", "json", "validate", "--key", testKey, tok)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	var res ValidateResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !res.Valid || res.Claims == nil || res.Claims.Subject != testUID || res.Claims.Capability != 0x2a {
		t.Errorf("validate = %+v", res)
	}

	// Token from stdin.
	if _, err := run(t, tok+"\n", "validate", "--key", testKey, "-"); err != nil {
		t.Errorf("validate from stdin error = %v", err)
	}

	out, err = run(t, "", "-o", "yaml", "inspect", tok)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "sub: "+testUID) || !strings.Contains(out, "aud: 42") {
		t.Errorf("inspect output = %q", out)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tok, err := run(t, "", "mint", "--key", testKey, "--uid", testUID, "-q")
	if err != nil {
		t.Fatalf("mint error = %v", err)
	}
	tok = strings.TrimSpace(tok)

	otherKey := "00000000000000000000000000000001"
	tests := []struct {
		name string
		key  string
		tok  string
	}{
		{"wrong key", otherKey, tok},
		{"truncated", testKey, tok[:len(tok)-1]},
		{"tampered", testKey, tok[:len(tok)-2] + "BA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", "-o", "json", "validate", "--key", tt.key, tt.tok)
			if code := exitCode(err); code != 1 {
				t.Fatalf("exit code = %d (err %v), want 1", code, err)
			}
			if !strings.Contains(out, `"valid": false`) {
				t.Errorf("output = %q, want valid false", out)
			}
		})
	}
}

func TestMint_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no key", []string{"mint", "--uid", testUID}},
		{"bad key", []string{"mint", "--key", "abcd", "--uid", testUID}},
		{"bad uid", []string{"mint", "--key", testKey, "--uid", "nope"}},
		{"bad cap", []string{"mint", "--key", testKey, "--uid", testUID, "--cap", "256"}},
		{"bad engine", []string{"mint", "--key", testKey, "--uid", testUID, "--engine", "gpu"}},
		{"bad output", []string{"-o", "xml", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); err == nil {
				t.Errorf("run(%v) error = nil", tt.args)
			}
		})
	}
}

func TestBench(t *testing.T) {
	out, err := run(t, "", "-o", "json", "bench", "--workers", "2", "--iterations", "50", "--no-spinner")
	if err != nil {
		t.Fatalf("bench error = %v", err)
	}
	var res service.BenchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Ops != 200 || res.Failures != 0 {
		t.Errorf("bench = %+v, want 200 ops and no failures", res)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "go_version") {
		t.Errorf("version output = %q", out)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	iss, err := token.New([]byte{0xab, 0xba, 0xda, 0xba, 0xd0, 0, 0, 0, 0xab, 0xba, 0xda, 0xba, 0xd0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	store := revocation.NewMemory(4, 0)
	t.Cleanup(func() { store.Close() })

	cfg := httpserver.DefaultRouterConfig()
	cfg.Tokens = service.NewTokenService(iss, store, &service.TokenServiceConfig{Logger: logger.Discard()})
	cfg.Logger = logger.Discard()
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_Flow(t *testing.T) {
	srv := newTestServer(t)
	remote := func(stdin string, args ...string) (string, error) {
		return run(t, stdin, append([]string{"-o", "json", "remote", "--server", srv.URL}, args...)...)
	}

	out, err := remote("", "health")
	if err != nil {
		t.Fatalf("remote health error = %v", err)
	}
	if !strings.Contains(out, `"status": "ready"`) {
		t.Errorf("health output = %q", out)
	}

	out, err = remote("", "mint", "--uid", testUID, "--cap", "7")
	if err != nil {
		t.Fatalf("remote mint error = %v", err)
	}
	var minted handler.MintTokenResponse
	if err := json.Unmarshal([]byte(out), &minted); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if minted.Subject != testUID || minted.Capability != 7 {
		t.Errorf("minted = %+v", minted)
	}

	// The server key matches testKey, so the local command agrees.
	if _, err := run(t, "", "validate", "--key", testKey, minted.Token); err != nil {
		t.Errorf("local validate of remote token error = %v", err)
	}

	if _, err := remote("", "validate", minted.Token); err != nil {
		t.Fatalf("remote validate error = %v", err)
	}
	if _, err := remote(minted.Token+"\n", "revoke", "-"); err != nil {
		t.Fatalf("remote revoke error = %v", err)
	}

	out, err = remote("", "validate", minted.Token)
	if code := exitCode(err); code != 1 {
		t.Fatalf("validate after revoke exit code = %d (err %v), want 1", code, err)
	}
	if !strings.Contains(out, `"revoked": true`) {
		t.Errorf("validate after revoke = %q", out)
	}
}

func TestRemote_APIError(t *testing.T) {
	srv := newTestServer(t)
	_, err := run(t, "", "remote", "--server", srv.URL, "mint", "--uid", "bogus")
	if err == nil {
		t.Fatal("remote mint with bad uid error = nil")
	}
	if !strings.Contains(err.Error(), "TM-TOKN-4000") {
		t.Errorf("error = %v, want TM-TOKN-4000", err)
	}
}
