package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Protocol limits. Token commands take at most three short arguments.
const (
	MaxArrayLen  = 16
	MaxBulkLen   = 4 * 1024
	MaxInlineLen = 4 * 1024
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

var crlf = []byte("\r\n")

// Reader decodes client commands.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Peek blocks until at least one byte is buffered.
func (r *Reader) Peek() error {
	_, err := r.br.Peek(1)
	return err
}

// ReadCommand reads one command as an array of bulk strings or as an
// inline line. An empty command returns nil args and a nil error.
func (r *Reader) ReadCommand() ([][]byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return nil, err
	}
	if b[0] == '*' {
		return r.readArray()
	}

	line, err := r.readLine(MaxInlineLen)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) > MaxArrayLen {
		return nil, fmt.Errorf("%w: %d inline arguments", ErrLimitExceeded, len(fields))
	}
	var args [][]byte
	for _, f := range fields {
		args = append(args, []byte(f))
	}
	return args, nil
}

func (r *Reader) readArray() ([][]byte, error) {
	n, err := r.readLength('*')
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if n > MaxArrayLen {
		return nil, fmt.Errorf("%w: array length %d over %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	args := make([][]byte, 0, n)
	for range n {
		arg, err := r.readBulk()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (r *Reader) readBulk() ([]byte, error) {
	n, err := r.readLength('$')
	if err != nil {
		return nil, err
	}
	switch {
	case n == -1:
		return nil, nil
	case n < 0:
		return nil, fmt.Errorf("%w: negative bulk length", ErrProtocol)
	case n > MaxBulkLen:
		return nil, fmt.Errorf("%w: bulk length %d over %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, err
	}
	if !bytes.HasSuffix(buf, crlf) {
		return nil, fmt.Errorf("%w: bulk not terminated by CRLF", ErrProtocol)
	}
	return buf[:n], nil
}

// readLength reads a "<prefix><int>\r\n" header.
func (r *Reader) readLength(prefix byte) (int, error) {
	line, err := r.readLine(32)
	if err != nil {
		return 0, err
	}
	if len(line) < 2 || line[0] != prefix {
		return 0, fmt.Errorf("%w: expected '%c'", ErrProtocol, prefix)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: bad length %q", ErrProtocol, line[1:])
	}
	return n, nil
}

func (r *Reader) readLine(limit int) (string, error) {
	var buf []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > limit {
			return "", fmt.Errorf("%w: line longer than %d", ErrLimitExceeded, limit)
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return "", err
		}
	}
	if !bytes.HasSuffix(buf, crlf) {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return string(buf[:len(buf)-2]), nil
}

// Writer encodes replies. Errors are sticky: after the first failed
// write the rest are skipped and Flush reports it.
type Writer struct {
	bw  *bufio.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) write(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = w.bw.WriteString(p)
	}
}

// Simple writes a status reply such as +OK.
func (w *Writer) Simple(s string) { w.write("+", s, "\r\n") }

// Error writes an error reply. Newlines in s are replaced so the reply
// stays one line.
func (w *Writer) Error(s string) {
	w.write("-", strings.NewReplacer("\r", " ", "\n", " ").Replace(s), "\r\n")
}

// Int writes an integer reply.
func (w *Writer) Int(n int64) { w.write(":", strconv.FormatInt(n, 10), "\r\n") }

// Bulk writes a bulk string reply.
func (w *Writer) Bulk(s string) { w.write("$", strconv.Itoa(len(s)), "\r\n", s, "\r\n") }

// Null writes the null bulk reply.
func (w *Writer) Null() { w.write("$-1\r\n") }

// Array writes an array header; the caller writes n elements next.
func (w *Writer) Array(n int) { w.write("*", strconv.Itoa(n), "\r\n") }

// Flush sends buffered replies.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.bw.Flush()
}

// commandName upper-cases an ASCII command name.
func commandName(b []byte) string {
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
