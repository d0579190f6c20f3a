package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/wwspec/pkg/descriptor"
	"github.com/gnana997/wwspec/pkg/importer"
	"github.com/gnana997/wwspec/pkg/parser"
	"github.com/gnana997/wwspec/pkg/util"
)

// configStem is the base name of descriptor files named after their
// directory, e.g. email-composer/ww-config.js.
const configStem = "ww-config"

// LoadOptions selects descriptor files under a root directory.
// Patterns are doublestar globs matched against slash-separated paths
// relative to the root.
type LoadOptions struct {
	Include []string
	Exclude []string
}

// DefaultLoadOptions matches every supported descriptor file outside
// dependency and VCS directories.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Include: []string{"**/*.{json,jsonc,yaml,yml,js,mjs,cjs,ts,mts,cts}"},
		Exclude: []string{"**/node_modules/**", "**/.git/**", "**/dist/**", ".wwspec/**"},
	}
}

// Loader reads descriptor files of any supported encoding.
type Loader struct {
	importer *importer.Importer
	options  LoadOptions
	logger   *slog.Logger
}

// NewLoader creates a Loader. JavaScript and TypeScript sources are only
// accepted when im is non-nil.
func NewLoader(im *importer.Importer, options LoadOptions, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{importer: im, options: options, logger: logger}
}

// ComponentName derives the catalog name of a descriptor file: the parent
// directory for ww-config.* files, otherwise the file name without its
// extension.
func ComponentName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == configStem {
		return filepath.Base(filepath.Dir(path))
	}
	return stem
}

// LoadFile decodes and validates one descriptor file.
func (l *Loader) LoadFile(path string) (*descriptor.Descriptor, error) {
	if _, ok := descriptor.DetectFormat(path); ok {
		return descriptor.LoadFile(path)
	}
	if parser.IsSource(path) {
		if l.importer == nil {
			return nil, fmt.Errorf("%s: source import is not enabled", path)
		}
		return l.importer.ImportFile(path)
	}
	return nil, fmt.Errorf("unsupported descriptor file extension: %s", path)
}

// Accepts reports whether path under root is a descriptor file the loader
// would pick up.
func (l *Loader) Accepts(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(l.options.Exclude, rel) {
		return false
	}
	if len(l.options.Include) > 0 && !matchAny(l.options.Include, rel) {
		return false
	}
	if _, ok := descriptor.DetectFormat(path); ok {
		return true
	}
	return l.importer != nil && parser.IsSource(path)
}

// Discover returns the accepted descriptor files under root, sorted.
func (l *Loader) Discover(root string) ([]string, error) {
	for _, pattern := range append(append([]string(nil), l.options.Include...), l.options.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.logger.Warn("walk error", "path", path, "error", err)
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && matchAny(l.options.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if l.Accepts(root, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

type loadResult struct {
	path string
	d    *descriptor.Descriptor
	err  error
}

// LoadDir loads every descriptor file under root into cat, replacing
// entries of the same name. Files are decoded in parallel and registered
// in path order. Failures of individual files are joined into the
// returned error; the files that loaded stay registered.
func (l *Loader) LoadDir(cat *Catalog, root string) (int, error) {
	files, err := l.Discover(root)
	if err != nil {
		return 0, fmt.Errorf("descriptor discovery failed: %w", err)
	}

	results := make([]loadResult, len(files))
	sem := make(chan struct{}, util.GetOptimalPoolSize())
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			d, err := l.LoadFile(path)
			results[i] = loadResult{path: path, d: d, err: err}
		}(i, path)
	}
	wg.Wait()

	var errs []error
	loaded := 0
	seen := make(map[string]string, len(results))
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		name := ComponentName(r.path)
		if prev, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("component %q: defined by both %s and %s", name, prev, r.path))
			continue
		}
		seen[name] = r.path
		if _, err := cat.Put(name, r.path, r.d); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded++
	}

	l.logger.Info("descriptor directory loaded",
		"root", root,
		"files", len(files),
		"loaded", loaded,
		"failed", len(errs))
	return loaded, errors.Join(errs...)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}
