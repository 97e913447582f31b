package redisserver

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReader_ReadCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"array", "*2\r\n$4\r\nPING\r\n$2\r\nhi\r\n", []string{"PING", "hi"}},
		{"inline", "tm.inspect abc\r\n", []string{"tm.inspect", "abc"}},
		{"empty inline", "\r\n", nil},
		{"empty array", "*0\r\n", nil},
		{"null bulk", "*1\r\n$-1\r\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := NewReader(strings.NewReader(tt.in)).ReadCommand()
			if err != nil {
				t.Fatalf("ReadCommand() error = %v", err)
			}
			if len(args) != len(tt.want) {
				t.Fatalf("ReadCommand() = %q, want %q", args, tt.want)
			}
			for i := range args {
				if string(args[i]) != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, args[i], tt.want[i])
				}
			}
		})
	}
}

func TestReader_ReadCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"bad array length", "*x\r\n", ErrProtocol},
		{"not bulk", "*1\r\n:1\r\n", ErrProtocol},
		{"bad terminator", "*1\r\n$2\r\nabXX", ErrProtocol},
		{"no crlf", "*1\n", ErrProtocol},
		{"too many args", "*17\r\n", ErrLimitExceeded},
		{"bulk too long", "*1\r\n$5000\r\n", ErrLimitExceeded},
		{"inline too long", strings.Repeat("a", MaxInlineLen+10) + "\r\n", ErrLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.in)).ReadCommand()
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadCommand() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Simple("OK")
	w.Error("ERR bad\r\nthing")
	w.Int(-7)
	w.Bulk("tok")
	w.Null()
	w.Array(2)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "+OK\r\n-ERR bad  thing\r\n:-7\r\n$3\r\ntok\r\n$-1\r\n*2\r\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCommandName(t *testing.T) {
	if got := commandName([]byte("tm.Mint")); got != "TM.MINT" {
		t.Errorf("commandName() = %q", got)
	}
}
