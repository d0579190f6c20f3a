package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is set by TestMain after building the binary.
var binaryPath string

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	tmp, err := os.MkdirTemp("", "wwspec-integration-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "wwspec")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmp)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func skipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests")
	}
}

// startServer launches `wwspec serve` as a subprocess and returns an
// initialized MCP client.
func startServer(t *testing.T, args ...string) *client.Client {
	t.Helper()

	c, err := client.NewStdioMCPClient(binaryPath, nil, append([]string{"serve"}, args...)...)
	require.NoError(t, err, "failed to start MCP server")
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "wwspec-integration-test",
		Version: "1.0.0",
	}

	result, err := c.Initialize(ctx, initReq)
	require.NoError(t, err, "failed to initialize MCP session")
	assert.Equal(t, "wwspec", result.ServerInfo.Name)
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}
	result, err := c.CallTool(ctx, req)
	require.NoError(t, err, "CallTool(%s) failed", name)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected content in result")
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return text.Text
}

func TestIntegration_ListTools(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_components",
		"get_descriptor",
		"list_events",
		"list_properties",
		"search_properties",
		"resolve_visibility",
		"get_layout",
		"validate_descriptor",
	}, names)
}

func TestIntegration_BuiltinCatalog(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	t.Run("list components", func(t *testing.T) {
		result := callTool(t, c, "list_components", nil)
		assert.False(t, result.IsError)
		var comps []map[string]any
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
		require.Len(t, comps, 1)
		assert.Equal(t, "email-composer", comps[0]["name"])
	})

	t.Run("layout follows values", func(t *testing.T) {
		result := callTool(t, c, "get_layout", map[string]any{
			"component": "email-composer",
			"panel":     "style",
			"values":    map[string]any{"enableTemplates": false},
		})
		assert.False(t, result.IsError)
		var layout struct {
			Sections []struct {
				Section    string   `json:"section"`
				Properties []string `json:"properties"`
			} `json:"sections"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &layout))
		require.Len(t, layout.Sections, 5)
		assert.Equal(t, "templateSettings", layout.Sections[2].Section)
		assert.NotContains(t, layout.Sections[2].Properties, "templatesDataSource")
	})

	t.Run("unknown component", func(t *testing.T) {
		result := callTool(t, c, "get_descriptor", map[string]any{"component": "nope"})
		assert.True(t, result.IsError)
	})
}

func TestIntegration_CatalogDirAndLog(t *testing.T) {
	skipIfNotIntegration(t)
	dir := t.TempDir()
	components := filepath.Join(dir, "components")
	require.NoError(t, os.MkdirAll(components, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(components, "card.json"), []byte(cardJSON), 0o644))
	logPath := filepath.Join(dir, "mcp.jsonl")

	c := startServer(t, "--catalog-dir", components, "--mcp-log", logPath, "--no-watch")

	result := callTool(t, c, "list_events", map[string]any{"component": "card"})
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "card:click")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tool":"list_events"`)
}
