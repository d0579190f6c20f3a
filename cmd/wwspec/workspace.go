package main

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/wwspec/pkg/catalog"
	"github.com/gnana997/wwspec/pkg/importer"
	"github.com/gnana997/wwspec/pkg/parser"
)

// workspace bundles the catalog and the services built on it for one
// command invocation.
type workspace struct {
	catalog    *catalog.Catalog
	loader     *catalog.Loader
	importer   *importer.Importer
	parsers    *parser.Manager
	catalogDir string
	locale     string
	logger     *slog.Logger
}

// openWorkspace loads the builtin catalog plus the descriptors of the
// configured catalog directory.
func openWorkspace(f commonFlags, cfg *ProjectConfig) (*workspace, error) {
	logger, err := resolveLogger(f, cfg)
	if err != nil {
		return nil, err
	}
	parsers := parser.NewManager(logger)
	im := importer.New(parsers, logger)
	ws := &workspace{
		catalog:    catalog.NewBuiltin(),
		loader:     catalog.NewLoader(im, catalog.DefaultLoadOptions(), logger),
		importer:   im,
		parsers:    parsers,
		catalogDir: resolveCatalogDir(f.catalogDir, cfg),
		locale:     resolveLocale(f.locale, cfg),
		logger:     logger,
	}

	if ws.catalogDir != "" {
		n, err := ws.loader.LoadDir(ws.catalog, ws.catalogDir)
		if err != nil {
			ws.Close()
			return nil, fmt.Errorf("failed to load catalog directory %s: %w", ws.catalogDir, err)
		}
		logger.Debug("catalog ready", "dir", ws.catalogDir, "loaded", n, "components", ws.catalog.Len())
	}
	return ws, nil
}

func (ws *workspace) entry(name string) (*catalog.Entry, error) {
	e, ok := ws.catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("component %q not found (known: %v)", name, ws.catalog.Names())
	}
	return e, nil
}

// Close releases the parser pools.
func (ws *workspace) Close() {
	if err := ws.parsers.Close(); err != nil {
		ws.logger.Warn("failed to close parsers", "error", err)
	}
}
