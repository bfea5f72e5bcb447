package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/developer-mesh/gitee-mcp/internal/observability"
)

// DefaultMaxConcurrent bounds in-flight requests when no limit is configured
const DefaultMaxConcurrent = 16

// StdioServer speaks newline-delimited JSON-RPC over a reader and writer,
// normally the process's stdin and stdout. Each request runs in its own
// goroutine; responses are written whole, one per line, in completion order.
type StdioServer struct {
	handler *Handler
	logger  observability.Logger
	in      io.Reader
	out     io.Writer
	sem     *semaphore.Weighted

	writeMu sync.Mutex
	enc     *json.Encoder
}

// NewStdioServer creates a stdio transport. maxConcurrent <= 0 selects
// DefaultMaxConcurrent.
func NewStdioServer(handler *Handler, in io.Reader, out io.Writer, maxConcurrent int64, logger observability.Logger) *StdioServer {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	return &StdioServer{
		handler: handler,
		logger:  logger.WithPrefix("stdio"),
		in:      in,
		out:     out,
		sem:     semaphore.NewWeighted(maxConcurrent),
		enc:     json.NewEncoder(out),
	}
}

type readResult struct {
	line []byte
	err  error
}

// Serve reads requests until the input ends or ctx is cancelled, then waits
// for in-flight requests. End of input is a clean shutdown.
func (s *StdioServer) Serve(ctx context.Context) error {
	sessionID := s.handler.OpenSession("stdio")
	defer s.handler.CloseSession(sessionID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan readResult)
	go s.readLines(ctx, lines)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var rr readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rr = <-lines:
		}

		if len(bytes.TrimSpace(rr.line)) > 0 {
			if err := s.dispatch(ctx, &wg, sessionID, rr.line); err != nil {
				return err
			}
		}

		if rr.err != nil {
			if errors.Is(rr.err, io.EOF) {
				s.logger.Info("Input closed", nil)
				return nil
			}
			return rr.err
		}
	}
}

func (s *StdioServer) readLines(ctx context.Context, lines chan<- readResult) {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		select {
		case lines <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *StdioServer) dispatch(ctx context.Context, wg *sync.WaitGroup, sessionID string, line []byte) error {
	var msg MCPMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		s.logger.Warn("Discarding unparseable message", map[string]interface{}{
			"error": err.Error(),
		})
		s.write(newParseError())
		return nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.sem.Release(1)

		if response := s.handler.HandleMessage(ctx, sessionID, &msg); response != nil {
			s.write(response)
		}
	}()
	return nil
}

func (s *StdioServer) write(msg *MCPMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Encode terminates every message with a newline
	if err := s.enc.Encode(msg); err != nil {
		s.logger.Error("Failed to write response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
