package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/developer-mesh/gitee-mcp/internal/metrics"
	"github.com/developer-mesh/gitee-mcp/internal/middleware"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
	"github.com/developer-mesh/gitee-mcp/internal/tracing"
)

// Handler serves MCP requests for any number of sessions
type Handler struct {
	tools      *tools.Registry
	limiter    *middleware.RateLimiter
	metrics    *metrics.Metrics
	tracer     *tracing.TracerProvider
	logger     observability.Logger
	levels     observability.LevelSetter
	serverName string
	version    string

	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	// Request tracking for cancellation
	activeRequests map[string]context.CancelFunc
	requestsMu     sync.Mutex
}

// Session represents an MCP session
type Session struct {
	ID              string
	Transport       string
	Initialized     bool
	ProtocolVersion string
	ClientName      string
	ClientVersion   string
	CreatedAt       time.Time
	LastActivity    time.Time
}

// Option configures a Handler
type Option func(*Handler)

// WithRateLimiter puts limiter in front of tools/call
func WithRateLimiter(limiter *middleware.RateLimiter) Option {
	return func(h *Handler) { h.limiter = limiter }
}

// WithMetrics enables prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithTracer enables spans around tool calls
func WithTracer(tp *tracing.TracerProvider) Option {
	return func(h *Handler) { h.tracer = tp }
}

// WithLevelSetter lets logging/setLevel change the process log level
func WithLevelSetter(ls observability.LevelSetter) Option {
	return func(h *Handler) { h.levels = ls }
}

// WithServerInfo sets the name and version reported by initialize
func WithServerInfo(name, version string) Option {
	return func(h *Handler) {
		h.serverName = name
		h.version = version
	}
}

// NewHandler creates a new MCP handler
func NewHandler(registry *tools.Registry, logger observability.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	h := &Handler{
		tools:          registry,
		logger:         logger.WithPrefix("mcp"),
		serverName:     "gitee-mcp",
		version:        "dev",
		sessions:       make(map[string]*Session),
		activeRequests: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OpenSession registers a new session for a transport and returns its id
func (h *Handler) OpenSession(transport string) string {
	now := time.Now()
	session := &Session{
		ID:           uuid.New().String(),
		Transport:    transport,
		CreatedAt:    now,
		LastActivity: now,
	}

	h.sessionsMu.Lock()
	h.sessions[session.ID] = session
	h.sessionsMu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordConnectionStart()
	}
	h.logger.Info("Session opened", map[string]interface{}{
		"session_id": session.ID,
		"transport":  transport,
	})
	return session.ID
}

// CloseSession forgets a session and cancels its in-flight requests
func (h *Handler) CloseSession(sessionID string) {
	h.sessionsMu.Lock()
	_, existed := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	h.sessionsMu.Unlock()

	h.requestsMu.Lock()
	prefix := sessionID + "/"
	for key, cancel := range h.activeRequests {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			cancel()
			delete(h.activeRequests, key)
		}
	}
	h.requestsMu.Unlock()

	if existed {
		if h.metrics != nil {
			h.metrics.RecordConnectionEnd()
		}
		h.logger.Info("Session closed", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

// Session returns a copy of the session state
func (h *Handler) Session(sessionID string) (Session, bool) {
	h.sessionsMu.RLock()
	defer h.sessionsMu.RUnlock()
	s, ok := h.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// HandleMessage processes one inbound message and returns the response to
// send, or nil for notifications. Failures are always turned into a JSON-RPC
// error response.
func (h *Handler) HandleMessage(ctx context.Context, sessionID string, msg *MCPMessage) *MCPMessage {
	h.touch(sessionID)
	if h.metrics != nil {
		h.metrics.RecordMessageReceived(msg.Method)
	}

	response, err := h.dispatch(ctx, sessionID, msg)
	if msg.IsNotification() {
		if err != nil {
			h.logger.Warn("Notification failed", map[string]interface{}{
				"method": msg.Method,
				"error":  err.Error(),
			})
		}
		return nil
	}

	if err != nil {
		response = newError(msg.ID, ToMCPError(err))
	} else if response == nil {
		response = newResult(msg.ID, map[string]interface{}{})
	}
	if h.metrics != nil {
		outcome := "result"
		if response.Error != nil {
			outcome = "error"
		}
		h.metrics.RecordMessageSent(outcome)
	}
	return response
}

func (h *Handler) dispatch(ctx context.Context, sessionID string, msg *MCPMessage) (*MCPMessage, error) {
	if msg.JSONRPC != JSONRPCVersion {
		return nil, &MCPError{Code: CodeInvalidRequest, Message: fmt.Sprintf("unsupported jsonrpc version %q", msg.JSONRPC)}
	}

	switch msg.Method {
	case "initialize":
		return h.handleInitialize(sessionID, msg)
	case "initialized", "notifications/initialized":
		return h.handleInitialized(sessionID)
	case "ping":
		return newResult(msg.ID, map[string]interface{}{}), nil
	case "shutdown":
		return h.handleShutdown(sessionID, msg)
	case "tools/list":
		return h.handleToolsList(msg)
	case "tools/call":
		return h.handleToolCall(ctx, sessionID, msg)
	case "resources/list":
		return newResult(msg.ID, map[string]interface{}{"resources": []interface{}{}}), nil
	case "prompts/list":
		return newResult(msg.ID, map[string]interface{}{"prompts": []interface{}{}}), nil
	case "logging/setLevel":
		return h.handleLoggingSetLevel(msg)
	case "$/cancelRequest", "notifications/cancelled":
		return h.handleCancelRequest(sessionID, msg)
	default:
		return nil, &MCPError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", msg.Method)}
	}
}

func (h *Handler) touch(sessionID string) {
	h.sessionsMu.Lock()
	if s, ok := h.sessions[sessionID]; ok {
		s.LastActivity = time.Now()
	}
	h.sessionsMu.Unlock()
}

func (h *Handler) handleInitialize(sessionID string, msg *MCPMessage) (*MCPMessage, error) {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return nil, &MCPError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid initialize params: %v", err)}
		}
	}

	version := params.ProtocolVersion
	if !supportedProtocolVersions[version] {
		version = LatestProtocolVersion
	}

	h.sessionsMu.Lock()
	if session, exists := h.sessions[sessionID]; exists {
		session.ProtocolVersion = version
		session.ClientName = params.ClientInfo.Name
		session.ClientVersion = params.ClientInfo.Version
	}
	h.sessionsMu.Unlock()

	h.logger.Info("Client initialized", map[string]interface{}{
		"session_id":       sessionID,
		"client":           params.ClientInfo.Name,
		"client_version":   params.ClientInfo.Version,
		"protocol_version": version,
	})

	return newResult(msg.ID, map[string]interface{}{
		"protocolVersion": version,
		"serverInfo": map[string]interface{}{
			"name":    h.serverName,
			"version": h.version,
		},
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
			"resources": map[string]interface{}{},
			"prompts":   map[string]interface{}{},
			"logging":   map[string]interface{}{},
		},
	}), nil
}

func (h *Handler) handleInitialized(sessionID string) (*MCPMessage, error) {
	h.sessionsMu.Lock()
	if session, exists := h.sessions[sessionID]; exists {
		session.Initialized = true
	}
	h.sessionsMu.Unlock()
	return nil, nil
}

func (h *Handler) handleShutdown(sessionID string, msg *MCPMessage) (*MCPMessage, error) {
	h.sessionsMu.Lock()
	if session, exists := h.sessions[sessionID]; exists {
		session.Initialized = false
	}
	h.sessionsMu.Unlock()
	return newResult(msg.ID, map[string]interface{}{}), nil
}

func (h *Handler) handleToolsList(msg *MCPMessage) (*MCPMessage, error) {
	toolList := make([]map[string]interface{}, 0, h.tools.Count())
	for tool := range h.tools.All() {
		toolList = append(toolList, map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	return newResult(msg.ID, map[string]interface{}{"tools": toolList}), nil
}

func (h *Handler) handleToolCall(ctx context.Context, sessionID string, msg *MCPMessage) (*MCPMessage, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, &MCPError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid tool call params: %v", err)}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	key := requestKey(sessionID, msg.ID)
	if msg.ID != nil {
		h.trackRequest(key, cancel)
		defer h.untrackRequest(key)
	}

	ctx, span := h.tracer.StartToolSpan(ctx, params.Name, sessionID)
	defer span.End()

	var done func(error)
	if h.metrics != nil {
		done = h.metrics.StartToolExecutionTimer(params.Name)
	}

	start := time.Now()
	result, err := h.callTool(ctx, params.Name, params.Arguments)
	if done != nil {
		done(err)
	}

	if err != nil {
		tracing.RecordError(span, err)
		kind := errorType(err)
		if h.metrics != nil {
			h.metrics.RecordToolExecutionError(params.Name, kind)
		}
		h.logger.Warn("Tool execution failed", map[string]interface{}{
			"tool":        params.Name,
			"session_id":  sessionID,
			"error_type":  kind,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err,
		})
		return nil, err
	}

	h.logger.Debug("Tool executed", map[string]interface{}{
		"tool":        params.Name,
		"session_id":  sessionID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return newResult(msg.ID, result), nil
}

func (h *Handler) callTool(ctx context.Context, name string, args json.RawMessage) (*tools.CallToolResult, error) {
	if err := h.limiter.Allow(name); err != nil {
		return nil, err
	}
	return h.tools.Invoke(ctx, name, args)
}

func (h *Handler) handleLoggingSetLevel(msg *MCPMessage) (*MCPMessage, error) {
	var params struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, &MCPError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid logging params: %v", err)}
	}

	// MCP uses syslog severities; the extra ones fold into the nearest level
	levelMap := map[string]observability.LogLevel{
		"debug":     observability.LogLevelDebug,
		"info":      observability.LogLevelInfo,
		"notice":    observability.LogLevelInfo,
		"warning":   observability.LogLevelWarn,
		"warn":      observability.LogLevelWarn,
		"error":     observability.LogLevelError,
		"critical":  observability.LogLevelError,
		"alert":     observability.LogLevelError,
		"emergency": observability.LogLevelError,
	}

	newLevel, ok := levelMap[params.Level]
	if !ok {
		return nil, &MCPError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid log level: %s", params.Level)}
	}

	if h.levels != nil {
		h.levels.SetLevel(newLevel)
		h.logger.Info("Log level changed", map[string]interface{}{
			"new_level": string(newLevel),
		})
	}
	return newResult(msg.ID, map[string]interface{}{}), nil
}

func (h *Handler) handleCancelRequest(sessionID string, msg *MCPMessage) (*MCPMessage, error) {
	var params struct {
		ID        interface{} `json:"id"`
		RequestID interface{} `json:"requestId"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, &MCPError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid cancel params: %v", err)}
	}
	target := params.ID
	if target == nil {
		target = params.RequestID
	}

	key := requestKey(sessionID, target)
	h.requestsMu.Lock()
	cancel, exists := h.activeRequests[key]
	if exists {
		delete(h.activeRequests, key)
	}
	h.requestsMu.Unlock()

	if exists {
		cancel()
		h.logger.Info("Request cancelled", map[string]interface{}{
			"request_id": target,
			"session_id": sessionID,
		})
	} else {
		h.logger.Debug("Request not found for cancellation", map[string]interface{}{
			"request_id": target,
			"session_id": sessionID,
		})
	}

	return newResult(msg.ID, map[string]interface{}{}), nil
}

// requestKey scopes a JSON-RPC id to its session
func requestKey(sessionID string, id interface{}) string {
	return fmt.Sprintf("%s/%v", sessionID, id)
}

func (h *Handler) trackRequest(key string, cancel context.CancelFunc) {
	h.requestsMu.Lock()
	h.activeRequests[key] = cancel
	h.requestsMu.Unlock()
}

func (h *Handler) untrackRequest(key string) {
	h.requestsMu.Lock()
	delete(h.activeRequests, key)
	h.requestsMu.Unlock()
}
