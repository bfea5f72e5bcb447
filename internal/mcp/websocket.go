package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/semaphore"
)

const (
	pingInterval = 30 * time.Second
	// file pushes carry whole file bodies
	maxMessageSize = 16 << 20
)

// WebSocketOptions tune the WebSocket transport
type WebSocketOptions struct {
	MaxConcurrent  int64
	OriginPatterns []string
}

// ServeWebSocket upgrades the request and serves one MCP session on it
// until the peer disconnects.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request, opts WebSocketOptions) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"mcp"},
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error":       err.Error(),
			"remote_addr": r.RemoteAddr,
		})
		return
	}
	h.HandleConnection(r.Context(), conn, opts.MaxConcurrent)
}

// HandleConnection serves an accepted WebSocket connection
func (h *Handler) HandleConnection(ctx context.Context, conn *websocket.Conn, maxConcurrent int64) {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	conn.SetReadLimit(maxMessageSize)
	sessionID := h.OpenSession("websocket")

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		h.CloseSession(sessionID)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// Start ping ticker to keep connection alive
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	sem := semaphore.NewWeighted(maxConcurrent)
	var writeMu sync.Mutex
	write := func(msg *MCPMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return wsjson.Write(ctx, conn, msg)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				h.logger.Warn("WebSocket read failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
			return
		}

		var msg MCPMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if werr := write(newParseError()); werr != nil {
				return
			}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		wg.Add(1)
		go func(msg MCPMessage) {
			defer wg.Done()
			defer sem.Release(1)

			response := h.HandleMessage(ctx, sessionID, &msg)
			if response == nil {
				return
			}
			if err := write(response); err != nil {
				h.logger.Error("Failed to write response", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				cancel()
			}
		}(msg)
	}
}
