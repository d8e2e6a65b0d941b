// Package mcpserver exposes registered tools over the Model Context
// Protocol and forwards extension events to connected clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/events"
	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/tools"
)

// NotificationPrefix namespaces forwarded events.
const NotificationPrefix = "notifications/todo-extension/"

// actionPrefix marks UI actions served as MCP tools.
const actionPrefix = "ui_"

// Server is a host.ActionRegistrar backed by an MCP server.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger

	mu    sync.Mutex
	tools map[string]server.ServerTool
}

// New creates a Server announcing name and version.
func New(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		logger: logger.Named("mcp"),
		tools:  make(map[string]server.ServerTool),
	}
}

// MCP returns the underlying server for transports.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Register serves d as an MCP tool named d.ID.
func (s *Server) Register(d host.Descriptor) (host.Registration, error) {
	return s.add(d.ID, d)
}

// RegisterAction serves a UI action as a tool. Dots in the action id
// become underscores, e.g. "panel.open" is served as "ui_panel_open".
func (s *Server) RegisterAction(d host.Descriptor) (host.Registration, error) {
	return s.add(ActionToolName(d.ID), d)
}

// ActionToolName returns the tool name an action id is served under.
func ActionToolName(actionID string) string {
	return actionPrefix + strings.ReplaceAll(actionID, ".", "_")
}

func (s *Server) add(name string, d host.Descriptor) (host.Registration, error) {
	if d.Handler == nil {
		return nil, fmt.Errorf("tool %s has no handler", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[name]; exists {
		return nil, fmt.Errorf("tool %s already registered", name)
	}

	st := server.ServerTool{Tool: toTool(name, d), Handler: s.handler(name, d)}
	s.tools[name] = st
	s.mcp.AddTools(st)
	s.logger.Debug("tool registered", zap.String("tool", name))

	return registration(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.tools[name]; !ok {
			return nil
		}
		delete(s.tools, name)
		s.mcp.DeleteTools(name)
		return nil
	}), nil
}

// Names lists the registered tool names in order.
func (s *Server) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type registration func() error

func (r registration) Dispose() error { return r() }

func toTool(name string, d host.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, p := range d.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case host.ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case host.ParamBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(name, opts...)
}

func (s *Server) handler(name string, d host.Descriptor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("tool handler panicked", zap.String("tool", name), zap.Any("panic", r))
				res, err = mcp.NewToolResultError(tools.ErrorMessage(r)), nil
			}
		}()

		result := d.Handler(ctx, req.GetArguments())
		if !result.Success {
			return mcp.NewToolResultError(result.Error), nil
		}
		return jsonResult(result), nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("json marshal: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// Forward sends e to every connected client as a notification. It has the
// signature of an events.Handler.
func (s *Server) Forward(_ context.Context, e events.Event) {
	s.mcp.SendNotificationToAllClients(NotificationPrefix+e.Name, notificationParams(e.Payload))
}

func notificationParams(payload any) map[string]any {
	switch p := payload.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return p
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{"payload": fmt.Sprint(payload)}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"payload": payload}
	}
	return out
}

// HTTPUserContext reads the caller's user id from header, falling back to
// defaultUserID.
func HTTPUserContext(header, defaultUserID string) server.HTTPContextFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
			return host.WithUserID(ctx, id)
		}
		return host.WithUserID(ctx, defaultUserID)
	}
}

// StdioUserContext binds every stdio call to userID.
func StdioUserContext(userID string) server.StdioContextFunc {
	return func(ctx context.Context) context.Context {
		return host.WithUserID(ctx, userID)
	}
}
