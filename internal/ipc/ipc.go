package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	maxMessageSize = 64 * 1024 * 1024
)

// Handler answers one request.
type Handler func(ctx context.Context, req *Request) *Response

// SendRequest connects to the daemon, sends a request, and returns the response.
func SendRequest(ctx context.Context, socketPath string, req *Request) (*Response, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.New("IPC not implemented for Windows yet")
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(requestTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := newDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// Server serves requests on a unix socket until its context ends.
type Server struct {
	socketPath string
	handler    Handler
	logger     *zap.Logger

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewServer creates a server; call Serve to start it.
func NewServer(socketPath string, handler Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{socketPath: socketPath, handler: handler, logger: logger}
}

// Listen binds the socket, replacing a stale one.
func (s *Server) Listen() error {
	if runtime.GOOS == "windows" {
		return errors.New("IPC server not implemented for Windows yet")
	}
	if conn, err := net.Dial("unix", s.socketPath); err == nil {
		conn.Close()
		return fmt.Errorf("another daemon is listening on %s", s.socketPath)
	}
	// Remove any stale socket
	_ = os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until ctx is cancelled, then waits for
// in-flight requests and removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.ln
		s.mu.Unlock()
	}

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer os.Remove(s.socketPath)

	s.logger.Info("IPC server listening", zap.String("socket", s.socketPath))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.logger.Warn("Accept failed", zap.Error(err))
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	enc := json.NewEncoder(conn)
	var req Request
	if err := newDecoder(conn).Decode(&req); err != nil {
		_ = enc.Encode(&Response{Status: StatusError, Message: "invalid request: " + err.Error()})
		return
	}

	s.logger.Debug("IPC request", zap.String("command", req.Command))
	resp := s.handler(ctx, &req)
	if resp == nil {
		resp = &Response{Status: StatusError, Message: "no response"}
	}
	if err := enc.Encode(resp); err != nil {
		s.logger.Debug("Failed to write IPC response", zap.Error(err))
	}
}

func newDecoder(conn net.Conn) *json.Decoder {
	return json.NewDecoder(bufio.NewReader(&limitedReader{r: conn, n: maxMessageSize}))
}

// limitedReader fails instead of returning EOF once n bytes were read.
type limitedReader struct {
	r interface{ Read([]byte) (int, error) }
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, errors.New("message too large")
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	return n, err
}
