// Package mcp exposes the component catalog over the Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/wwspec/pkg/catalog"
	"github.com/gnana997/wwspec/pkg/importer"
	"github.com/gnana997/wwspec/pkg/mcplog"
)

const serverName = "wwspec"

// Version is reported to MCP clients.
var Version = "0.1.0-dev"

// Server implements the MCP server, exposing descriptor queries, layout
// resolution and validation tools.
type Server struct {
	mcpServer *server.MCPServer
	query     *catalog.QueryService
	resolver  *catalog.Resolver
	importer  *importer.Importer // may be nil; js/ts validation is then unavailable
	logger    *mcplog.Logger     // may be nil
}

// NewServer creates a server over the given query service and resolver.
func NewServer(qs *catalog.QueryService, resolver *catalog.Resolver, im *importer.Importer, logger *mcplog.Logger) *Server {
	s := &Server{query: qs, resolver: resolver, importer: im, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer(serverName, Version, opts...)

	s.mcpServer.AddTools(s.tools()...)
	return s
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listComponentsTool(), Handler: s.handleListComponents},
		{Tool: getDescriptorTool(), Handler: s.handleGetDescriptor},
		{Tool: listEventsTool(), Handler: s.handleListEvents},
		{Tool: listPropertiesTool(), Handler: s.handleListProperties},
		{Tool: searchPropertiesTool(), Handler: s.handleSearchProperties},
		{Tool: resolveVisibilityTool(), Handler: s.handleResolveVisibility},
		{Tool: getLayoutTool(), Handler: s.handleGetLayout},
		{Tool: validateDescriptorTool(), Handler: s.handleValidateDescriptor},
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
