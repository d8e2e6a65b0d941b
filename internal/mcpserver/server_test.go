package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-extension/internal/events"
	"github.com/nhle/todo-extension/internal/host"
)

func echoDescriptor(id string) host.Descriptor {
	return host.Descriptor{
		ID:          id,
		Description: "Echo the caller",
		Params: []host.Param{
			{Name: "text", Type: host.ParamString, Required: true, Description: "Text"},
			{Name: "mode", Type: host.ParamString, Enum: []string{"plain", "loud"}},
			{Name: "count", Type: host.ParamNumber},
			{Name: "flag", Type: host.ParamBoolean},
		},
		Handler: func(ctx context.Context, args map[string]any) host.Result {
			user, _ := host.UserIDFromContext(ctx)
			if args["text"] == "fail" {
				return host.Result{Success: false, Error: "text is required"}
			}
			if args["text"] == "panic" {
				panic("handler exploded")
			}
			return host.Result{Success: true, Data: map[string]any{"text": args["text"], "user": user}}
		},
	}
}

func callTool(t *testing.T, s *Server, ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s.mu.Lock()
	st, ok := s.tools[name]
	s.mu.Unlock()
	require.True(t, ok, "tool %s not registered", name)

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := st.Handler(ctx, req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestRegisterBuildsSchema(t *testing.T) {
	s := New("test", "0.0.0", nil)
	_, err := s.Register(echoDescriptor("echo"))
	require.NoError(t, err)

	tool := s.tools["echo"].Tool
	assert.Equal(t, "echo", tool.Name)
	assert.Equal(t, []string{"text"}, tool.InputSchema.Required)
	assert.Contains(t, tool.InputSchema.Properties, "count")

	mode := tool.InputSchema.Properties["mode"].(map[string]any)
	assert.Equal(t, "string", mode["type"])
	assert.Equal(t, []string{"plain", "loud"}, mode["enum"])

	count := tool.InputSchema.Properties["count"].(map[string]any)
	assert.Equal(t, "number", count["type"])
	flag := tool.InputSchema.Properties["flag"].(map[string]any)
	assert.Equal(t, "boolean", flag["type"])
}

func TestToolResults(t *testing.T) {
	s := New("test", "0.0.0", nil)
	_, err := s.Register(echoDescriptor("echo"))
	require.NoError(t, err)
	ctx := host.WithUserID(context.Background(), "alice")

	res := callTool(t, s, ctx, "echo", map[string]any{"text": "hello"})
	assert.False(t, res.IsError)
	var envelope host.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, map[string]any{"text": "hello", "user": "alice"}, envelope.Data)

	res = callTool(t, s, ctx, "echo", map[string]any{"text": "fail"})
	assert.True(t, res.IsError)
	assert.Equal(t, "text is required", text(t, res))

	res = callTool(t, s, ctx, "echo", map[string]any{"text": "panic"})
	assert.True(t, res.IsError)
	assert.Equal(t, "handler exploded", text(t, res))
}

func TestRegistrationLifecycle(t *testing.T) {
	s := New("test", "0.0.0", nil)

	reg, err := s.Register(echoDescriptor("echo"))
	require.NoError(t, err)
	_, err = s.Register(echoDescriptor("echo"))
	assert.Error(t, err, "duplicate names are rejected")

	action, err := s.RegisterAction(echoDescriptor("panel.toggleGroup"))
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "ui_panel_toggleGroup"}, s.Names())

	require.NoError(t, reg.Dispose())
	require.NoError(t, reg.Dispose())
	require.NoError(t, action.Dispose())
	assert.Empty(t, s.Names())

	_, err = s.Register(host.Descriptor{ID: "broken"})
	assert.Error(t, err)
}

func TestUserContextFuncs(t *testing.T) {
	fn := HTTPUserContext("X-User-ID", "local")

	req := httptest.NewRequest("POST", "/mcp", nil)
	req.Header.Set("X-User-ID", " bob ")
	id, ok := host.UserIDFromContext(fn(context.Background(), req))
	require.True(t, ok)
	assert.Equal(t, "bob", id)

	id, _ = host.UserIDFromContext(fn(context.Background(), httptest.NewRequest("POST", "/mcp", nil)))
	assert.Equal(t, "local", id)

	id, _ = host.UserIDFromContext(StdioUserContext("carol")(context.Background()))
	assert.Equal(t, "carol", id)
}

func TestNotificationParams(t *testing.T) {
	assert.Equal(t, map[string]any{}, notificationParams(nil))
	assert.Equal(t, map[string]any{"id": "t1"}, notificationParams(map[string]any{"id": "t1"}))

	type payload struct {
		UserID string `json:"userId"`
	}
	assert.Equal(t, map[string]any{"userId": "alice"}, notificationParams(payload{UserID: "alice"}))
	assert.Equal(t, map[string]any{"payload": "plain"}, notificationParams("plain"))
}

func TestForwardWithoutClients(t *testing.T) {
	s := New("test", "0.0.0", nil)
	assert.NotPanics(t, func() {
		s.Forward(context.Background(), eventOf("todos.changed"))
	})
}

func eventOf(name string) events.Event {
	return events.Event{Name: name, Payload: map[string]any{"userId": "alice"}}
}
