package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/wwspec/pkg/util"
)

// Manager hands out pooled tree-sitter parsers per language.
//
// Pools are created lazily on first use. Callers own the returned Tree and
// must Close it. The Manager must be closed via Close().
//
// Example:
//
//	manager := NewManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse(source, LanguageJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type Manager struct {
	pools    map[Language]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	parses int
}

// NewManager creates a Manager whose pools hold up to
// util.GetOptimalPoolSize() parsers each.
func NewManager(logger *slog.Logger) *Manager {
	return NewManagerWithPoolSize(logger, 0)
}

// NewManagerWithPoolSize creates a Manager with an explicit pool size.
// A size of 0 uses the CPU-based default.
func NewManagerWithPoolSize(logger *slog.Logger, poolSize int) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:    make(map[Language]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the grammar of lang.
//
// A tree with syntax errors is still returned (and logged); the importer
// reports errors on the nodes it actually reads.
func (m *Manager) Parse(source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pool, err := m.getOrCreatePool(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	m.mutex.Lock()
	m.parses++
	m.mutex.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}
	if tree.RootNode().HasError() {
		m.logger.Warn("parse tree contains errors", "language", lang.String())
	}
	return tree, nil
}

// ParseFile parses source, detecting the language from filePath.
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return m.Parse(source, lang)
}

// Close releases all parser pools. The Manager cannot be used afterwards.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.logger.Debug("closing parser manager", "parses", m.parses)
	for _, pool := range m.pools {
		pool.close()
	}
	m.pools = make(map[Language]*parserPool)
	return nil
}

// Stats returns the number of parsers created and parses performed.
func (m *Manager) Stats() (created, parses int) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, pool := range m.pools {
		created += pool.createdCount()
	}
	return created, m.parses
}

// getOrCreatePool uses double-checked locking.
func (m *Manager) getOrCreatePool(lang Language) (*parserPool, error) {
	m.mutex.RLock()
	pool, exists := m.pools[lang]
	m.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if pool, exists = m.pools[lang]; exists {
		return pool, nil
	}

	langPtr, err := languagePointer(lang)
	if err != nil {
		return nil, err
	}
	pool = newParserPool(lang, langPtr, m.poolSize, m.logger)
	m.pools[lang] = pool
	m.logger.Debug("created parser pool", "language", lang.String(), "maxSize", m.poolSize)
	return pool, nil
}

func languagePointer(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	case LanguageTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	}
	return nil, fmt.Errorf("unsupported language: %s", lang)
}
