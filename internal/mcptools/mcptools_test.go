package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexdesk/lexdesk/internal/facade"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	svc := facade.New(facade.Options{})
	t.Cleanup(func() { svc.Close() })

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := NewServer(svc, "test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestListTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"generate_text", "analyze_document", "summarize_text", "analyze_contract", "service_status",
	}, names)
}

func TestCallOperationTool(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analyze_document",
		Arguments: map[string]any{"text": "Contrato com objeto e foro."},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out OperationOutput
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, "local", out.Path)
	assert.NotEmpty(t, out.Content)
	require.NotNil(t, out.Score)
	assert.Equal(t, 95, *out.Score)
}

func TestCallOperationToolWithEmptyText(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "summarize_text",
		Arguments: map[string]any{"text": ""},
	})

	if err == nil {
		assert.True(t, res.IsError)
	}
}

func TestServiceStatusTool(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "service_status",
		Arguments: map[string]any{"refresh": true},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out StatusOutput
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.False(t, out.Online)
	assert.Equal(t, "local", out.Mode)
	assert.Len(t, out.Capabilities, 4)
}
