package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tokmint-go/internal/infra/buildinfo"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"with http prefix", "http://localhost:5080", "http://localhost:5080"},
		{"with https prefix", "https://localhost:5443", "https://localhost:5443"},
		{"without prefix", "localhost:5080", "http://localhost:5080"},
		{"trailing slash", "http://localhost:5080/", "http://localhost:5080"},
		{"unix socket", "unix:///run/tokmint.sock", "http://localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewHTTPClient(tt.server).BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/tokens" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != buildinfo.UserAgent() {
			t.Errorf("User-Agent = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["user_id"] != "u" {
			t.Errorf("body = %v, %v", body, err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"code":"OK","message":"Success","data":{"token":"t"}}`))
	}))
	defer server.Close()

	var out struct {
		Token string `json:"token"`
	}
	err := NewHTTPClient(server.URL).Post(context.Background(), "/v1/tokens", map[string]string{"user_id": "u"}, &out)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out.Token != "t" {
		t.Errorf("out = %+v", out)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/plain" {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"TM-TOKN-4010","message":"invalid token","request_id":"r1"}`))
	}))
	defer server.Close()
	c := NewHTTPClient(server.URL)

	err := c.Post(context.Background(), "/v1/tokens/revoke", map[string]string{}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Post() error = %v, want *APIError", err)
	}
	if apiErr.Status != 401 || apiErr.RequestID != "r1" || !IsCode(err, "TM-TOKN-4010") {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "TM-TOKN-4010") {
		t.Errorf("Error() = %q", err.Error())
	}

	err = c.Get(context.Background(), "/plain", nil)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Code != "" {
		t.Errorf("Get(/plain) error = %v", err)
	}
	if IsCode(errors.New("x"), "TM-TOKN-4010") {
		t.Error("IsCode() matched a plain error")
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	err := NewHTTPClient(server.URL, WithTimeout(50*time.Millisecond)).Get(context.Background(), "/health", nil)
	if err == nil {
		t.Fatal("Get() succeeded past the timeout")
	}
}

func TestParseResponse_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	if err := NewHTTPClient(server.URL).Get(context.Background(), "/", nil); err == nil {
		t.Error("Get() of non-JSON succeeded")
	}
}
