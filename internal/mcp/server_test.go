package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/internal/mcp/tools"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type indexInput struct {
	IndexName string `json:"index_name"`
}

type indexOutput struct {
	Echo string `json:"echo"`
}

// connect starts s on an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestServer_GenerateTypes(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var logs syncBuffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	s, err := NewServer(&tools.Deps{Config: &config.Config{MaxValueSetSize: 100}}, WithBuiltinTools())
	require.NoError(t, err)
	session := connect(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	assert.True(t, names["algolia_generate_types"])
	assert.True(t, names["algolia_merge_samples"])
	assert.False(t, names["algolia_fetch_samples"], "fetch needs a sample source")

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: "algolia_generate_types",
		Arguments: map[string]any{
			"samples": []any{
				map[string]any{"objectID": "1", "store": map[string]any{"city": "Oslo"}},
			},
			"index_name": "products",
			"prefix":     "Algolia",
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	out, ok := result.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content is an object")
	assert.Equal(t, "AlgoliaHit", out["root_type"])
	assert.Equal(t, []any{"AlgoliaStore", "AlgoliaHit"}, out["types"])
	assert.Contains(t, out["source"], "export interface AlgoliaStore {\n  city: string;\n}")

	assert.Contains(t, logs.String(), `msg="method call completed" method=tools/call`)
	assert.Contains(t, logs.String(), "tool=algolia_generate_types")
}

func TestServer_ToolErrorIsReported(t *testing.T) {
	s, err := NewServer(&tools.Deps{}, WithBuiltinTools())
	require.NoError(t, err)
	session := connect(t, s)

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "algolia_merge_samples",
		Arguments: map[string]any{"samples": []any{}},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "INVALID_INPUT")
}

func TestServer_CustomRegistration(t *testing.T) {
	s, err := NewServer(&tools.Deps{}, WithCustomRegistration(func(srv *sdkmcp.Server) {
		tools.AddTool(srv, &sdkmcp.Tool{Name: "echo_index", Description: "Echo an index name"},
			func(ctx context.Context, req *sdkmcp.CallToolRequest, in indexInput) (*sdkmcp.CallToolResult, indexOutput, error) {
				return nil, indexOutput{Echo: in.IndexName}, nil
			})
	}))
	require.NoError(t, err)
	session := connect(t, s)

	list, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Tools, 1, "builtin tools stay off without WithBuiltinTools")
	assert.Equal(t, "echo_index", list.Tools[0].Name)

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "echo_index",
		Arguments: map[string]any{"index_name": "products"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "products"}, result.StructuredContent)
}
