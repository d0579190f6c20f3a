package main

import (
	"fmt"

	"github.com/gnana997/wwspec/pkg/catalog"
	mcpserver "github.com/gnana997/wwspec/pkg/mcp"
	"github.com/gnana997/wwspec/pkg/mcplog"
)

// runServe starts the MCP server on stdin/stdout. Descriptors under the
// catalog directory are reloaded as they change unless --no-watch is set.
func runServe(args []string, cfg *ProjectConfig) error {
	var common commonFlags
	var mcpLog string
	var noWatch bool
	var cacheSize int
	fs := newFlagSet("serve", &common)
	fs.StringVar(&mcpLog, "mcp-log", "", "append one JSONL line per tool call to this file")
	fs.BoolVar(&noWatch, "no-watch", false, "do not reload descriptors when files change")
	fs.IntVar(&cacheSize, "cache-size", catalog.DefaultResolverCacheSize, "number of resolved layouts kept in memory")
	if _, err := parseArgs(fs, args, "serve [--catalog-dir dir] [--mcp-log file]", 0); err != nil {
		return err
	}

	ws, err := openWorkspace(common, cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	resolver, err := catalog.NewResolver(ws.catalog, cacheSize, ws.logger)
	if err != nil {
		return err
	}

	if ws.catalogDir != "" && !noWatch {
		watcher, err := catalog.NewWatcher(ws.catalog, ws.loader, resolver, catalog.WatchOptions{
			OnReload: func(path string, err error) {
				if err != nil {
					ws.logger.Warn("descriptor reload failed, keeping previous version", "path", path, "error", err)
				}
			},
		}, ws.logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ws.catalogDir); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	logger, err := mcplog.NewLogger(resolveMCPLog(mcpLog, cfg))
	if err != nil {
		return err
	}
	defer logger.Close()

	qs := catalog.NewQueryService(ws.catalog)
	qs.Locale = ws.locale
	srv := mcpserver.NewServer(qs, resolver, ws.importer, logger)

	ws.logger.Info("serving MCP on stdio", "components", ws.catalog.Len())
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
