package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gnana997/wwspec/pkg/catalog"
	"github.com/gnana997/wwspec/pkg/descriptor"
)

// errValidation is returned by validate when at least one file failed, after
// the problems have been printed.
var errValidation = errors.New("validation failed")

func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if common != nil {
		common.register(fs)
	}
	return fs
}

// parseArgs parses args and checks the positional argument count.
func parseArgs(fs *pflag.FlagSet, args []string, usage string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w\nusage: wwspec %s", err, usage)
	}
	rest := fs.Args()
	if want >= 0 && len(rest) != want {
		return nil, fmt.Errorf("usage: wwspec %s", usage)
	}
	if want < 0 && len(rest) == 0 {
		return nil, fmt.Errorf("usage: wwspec %s", usage)
	}
	return rest, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// runValidate checks descriptor files and prints every problem found.
func runValidate(args []string, cfg *ProjectConfig, w io.Writer) error {
	var common commonFlags
	fs := newFlagSet("validate", &common)
	files, err := parseArgs(fs, args, "validate <file>...", -1)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(common, cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	failed := 0
	for _, path := range files {
		d, err := ws.loader.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s\n", path)
			for _, msg := range descriptor.Problems(err) {
				fmt.Fprintf(w, "      %s\n", msg)
			}
			continue
		}
		fmt.Fprintf(w, "ok    %s  (%s: %d properties, %d events)\n",
			path, catalog.ComponentName(path), d.Properties.Len(), len(d.TriggerEvents))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errValidation, failed, len(files))
	}
	return nil
}

// runInspect prints a component as a table, or as JSON with --json.
func runInspect(args []string, cfg *ProjectConfig, w io.Writer) error {
	var common commonFlags
	var asJSON bool
	fs := newFlagSet("inspect", &common)
	fs.BoolVar(&asJSON, "json", false, "print property summaries as JSON")
	rest, err := parseArgs(fs, args, "inspect <component> [--json]", 1)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(common, cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	e, err := ws.entry(rest[0])
	if err != nil {
		return err
	}
	if asJSON {
		qs := catalog.NewQueryService(ws.catalog)
		qs.Locale = ws.locale
		props, err := qs.ListProperties(e.Name, "")
		if err != nil {
			return err
		}
		return writeJSON(w, props)
	}
	printComponentHuman(w, e, ws.locale)
	return nil
}

// runExport writes a registered descriptor as JSON.
func runExport(args []string, cfg *ProjectConfig, w io.Writer) error {
	var common commonFlags
	var out string
	fs := newFlagSet("export", &common)
	fs.StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	rest, err := parseArgs(fs, args, "export <component> [-o file]", 1)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(common, cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	e, err := ws.entry(rest[0])
	if err != nil {
		return err
	}
	return writeOutput(w, out, e.Descriptor)
}

// runImport converts a ww-config.js/ts source into a JSON descriptor.
func runImport(args []string, cfg *ProjectConfig, w io.Writer) error {
	var common commonFlags
	var out string
	fs := newFlagSet("import", &common)
	fs.StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	rest, err := parseArgs(fs, args, "import <ww-config.js|ts> [-o file]", 1)
	if err != nil {
		return err
	}
	// Only the importer is needed; skip loading the catalog directory.
	common.catalogDir = ""
	var importCfg *ProjectConfig
	if cfg != nil {
		c := *cfg
		c.CatalogDir = ""
		importCfg = &c
	}
	ws, err := openWorkspace(common, importCfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	d, err := ws.importer.ImportFile(rest[0])
	if err != nil {
		return err
	}
	return writeOutput(w, out, d)
}

func writeOutput(w io.Writer, path string, v any) error {
	if path == "" {
		return writeJSON(w, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runVisible resolves hidden predicates for the given values and prints
// either the per-property visibility or one panel's layout.
func runVisible(args []string, cfg *ProjectConfig, w io.Writer) error {
	var common commonFlags
	var sets []string
	var panel string
	var asJSON bool
	fs := newFlagSet("visible", &common)
	fs.StringArrayVar(&sets, "set", nil, "property value as name=value; value is JSON or a bare string (repeatable)")
	fs.StringVar(&panel, "panel", "", "print the layout of this panel (style or settings)")
	fs.BoolVar(&asJSON, "json", false, "print JSON")
	rest, err := parseArgs(fs, args, "visible <component> [--set name=value]... [--panel style|settings]", 1)
	if err != nil {
		return err
	}
	values, err := parseAssignments(sets)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(common, cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	e, err := ws.entry(rest[0])
	if err != nil {
		return err
	}
	for name := range values {
		if _, ok := e.Descriptor.Property(name); !ok {
			return fmt.Errorf("component %q has no property %q", e.Name, name)
		}
	}
	resolver, err := catalog.NewResolver(ws.catalog, 0, ws.logger)
	if err != nil {
		return err
	}

	if panel != "" {
		layout, err := resolver.Layout(e.Name, descriptor.Panel(panel), values)
		if err != nil {
			return err
		}
		if asJSON {
			if layout == nil {
				layout = []descriptor.SectionLayout{}
			}
			return writeJSON(w, layout)
		}
		if len(layout) == 0 {
			fmt.Fprintf(w, "%s panel  (empty)\n", panel)
			return nil
		}
		for _, s := range layout {
			fmt.Fprintln(w, s.Section)
			for _, p := range s.Properties {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		return nil
	}

	vis, err := resolver.Visibility(e.Name, values)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, vis)
	}
	names := e.Descriptor.PropertyNames()
	nameW := 0
	for _, name := range names {
		if len(name) > nameW {
			nameW = len(name)
		}
	}
	for _, name := range names {
		state := "visible"
		if !vis[name] {
			state = "hidden"
		}
		fmt.Fprintf(w, "%-*s  %s\n", nameW, name, state)
	}
	return nil
}

// parseAssignments decodes --set name=value pairs. A value that is not
// valid JSON is taken as a string.
func parseAssignments(sets []string) (descriptor.Values, error) {
	values := make(descriptor.Values, len(sets))
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		var v descriptor.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = descriptor.String(raw)
		}
		values[name] = v
	}
	return values, nil
}
