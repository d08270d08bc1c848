// Package transport performs single request/response exchanges with the
// tabctl daemon over its Unix socket.
//
// Each exchange opens a fresh connection, writes exactly one
// newline-terminated JSON request, and reads exactly one newline-terminated
// JSON response. A single deadline covers the whole exchange, and exactly
// one outcome wins: parsed response, protocol error, connection-closed
// error, or timeout. The connection is always closed before Exchange
// returns.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"tabctl/internal/protocol"
)

// DialTimeout bounds connection establishment.
const DialTimeout = 5 * time.Second

// DefaultExchangeTimeout bounds a full request/response exchange.
const DefaultExchangeTimeout = 30 * time.Second

// Sentinel errors, checked with errors.Is.
var (
	// ErrTimeout is returned when no response resolved within the
	// exchange deadline.
	ErrTimeout = errors.New("transport: exchange timed out")

	// ErrConnectionClosed is returned when the daemon closed the
	// connection before a response could be parsed.
	ErrConnectionClosed = errors.New("transport: connection closed before response")
)

// ProtocolError indicates the daemon's response bytes were not valid JSON.
// It is treated as a transport-level failure.
type ProtocolError struct {
	Raw []byte
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: malformed response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Transport exchanges requests with a daemon endpoint.
type Transport struct {
	socketPath string
	timeout    time.Duration
}

// New creates a Transport for the given socket path. A zero timeout uses
// DefaultExchangeTimeout.
func New(socketPath string, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}
	return &Transport{socketPath: socketPath, timeout: timeout}
}

// SocketPath returns the endpoint this transport dials.
func (t *Transport) SocketPath() string { return t.socketPath }

// Exchange sends one request and collects its response. The context only
// gates the dial; once connected, the exchange deadline governs.
func (t *Transport) Exchange(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	line = append(line, '\n')
	if _, err := conn.Write(line); err != nil {
		return nil, wireErr(err, "write request")
	}

	// Accumulate until the first newline; everything before it is the
	// response. Further data on the connection is ignored.
	raw, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Connection closed without a delimiter: try whatever was
			// buffered as a last resort.
			if resp, perr := parseResponse(bytes.TrimSpace(raw)); perr == nil {
				return resp, nil
			}
			return nil, ErrConnectionClosed
		}
		return nil, wireErr(err, "read response")
	}

	resp, err := parseResponse(bytes.TrimSpace(raw))
	if err != nil {
		// A parse error on the first delimited line fails the exchange
		// immediately.
		return nil, err
	}
	return resp, nil
}

func parseResponse(raw []byte) (*protocol.Response, error) {
	if len(raw) == 0 {
		return nil, &ProtocolError{Raw: raw, Err: errors.New("empty response")}
	}
	var resp protocol.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ProtocolError{Raw: raw, Err: err}
	}
	return &resp, nil
}

// wireErr maps I/O deadline expiry onto ErrTimeout so callers can test
// with errors.Is regardless of which syscall hit the deadline.
func wireErr(err error, op string) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
