// Package importer reads component descriptors written as JavaScript or
// TypeScript modules (ww-config.js) and converts them into descriptor
// records.
//
// Only literal data is accepted: objects, arrays, strings, numbers, booleans,
// null/undefined, and arrow-function "hidden" predicates of a small set of
// single-property shapes. Anything else is reported with its source line.
package importer

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wwspec/pkg/descriptor"
	"github.com/gnana997/wwspec/pkg/parser"
)

// Importer converts ww-config sources into descriptors.
type Importer struct {
	parsers *parser.Manager
	logger  *slog.Logger
}

// New creates an Importer backed by the given parser manager.
func New(parsers *parser.Manager, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{parsers: parsers, logger: logger}
}

// ImportFile reads and converts a source file.
func (im *Importer) ImportFile(path string) (*descriptor.Descriptor, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
	d, err := im.Import(source, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Import converts source in the given language.
func (im *Importer) Import(source []byte, lang parser.Language) (*descriptor.Descriptor, error) {
	v, err := im.ImportValue(source, lang)
	if err != nil {
		return nil, err
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode imported descriptor: %w", err)
	}
	return descriptor.Parse(data)
}

// ImportValue converts the exported object literal into a Value without
// validating it as a descriptor.
func (im *Importer) ImportValue(source []byte, lang parser.Language) (descriptor.Value, error) {
	tree, err := im.parsers.Parse(source, lang)
	if err != nil {
		return descriptor.Value{}, err
	}
	defer tree.Close()

	obj := findExportedObject(tree.RootNode(), source)
	if obj == nil {
		return descriptor.Value{}, fmt.Errorf("no exported object literal found")
	}

	c := &converter{source: source}
	v, err := c.value(obj)
	if err != nil {
		return descriptor.Value{}, err
	}
	im.logger.Debug("imported descriptor source", "language", lang.String(), "keys", v.Keys())
	return v, nil
}

// findExportedObject locates `export default {...}` or
// `module.exports = {...}` at the top level of the program.
func findExportedObject(root *ts.Node, source []byte) *ts.Node {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Kind() {
		case "export_statement":
			if value := stmt.ChildByFieldName("value"); value != nil {
				if obj := unwrap(value); obj.Kind() == "object" {
					return obj
				}
			}
		case "expression_statement":
			if stmt.NamedChildCount() == 0 {
				continue
			}
			assign := stmt.NamedChild(0)
			if assign.Kind() != "assignment_expression" {
				continue
			}
			left := assign.ChildByFieldName("left")
			right := assign.ChildByFieldName("right")
			if left == nil || right == nil {
				continue
			}
			if obj := unwrap(right); obj.Kind() == "object" && isModuleExports(left, source) {
				return obj
			}
		}
	}
	return nil
}

func isModuleExports(n *ts.Node, source []byte) bool {
	if n.Kind() != "member_expression" {
		return false
	}
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	return obj != nil && prop != nil &&
		obj.Utf8Text(source) == "module" && prop.Utf8Text(source) == "exports"
}

// unwrap strips parentheses and TypeScript `as`/`satisfies` wrappers.
func unwrap(n *ts.Node) *ts.Node {
	for {
		switch n.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			if n.NamedChildCount() == 0 {
				return n
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
}

type converter struct {
	source []byte
}

func (c *converter) text(n *ts.Node) string {
	return n.Utf8Text(c.source)
}

func (c *converter) errorf(n *ts.Node, format string, args ...any) error {
	pos := n.StartPosition()
	return fmt.Errorf("line %d:%d: %s", pos.Row+1, pos.Column+1, fmt.Sprintf(format, args...))
}

// value converts a literal expression node.
func (c *converter) value(n *ts.Node) (descriptor.Value, error) {
	n = unwrap(n)
	switch n.Kind() {
	case "object":
		return c.object(n)
	case "array":
		var items []descriptor.Value
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child.Kind() == "comment" {
				continue
			}
			v, err := c.value(child)
			if err != nil {
				return descriptor.Value{}, err
			}
			items = append(items, v)
		}
		return descriptor.List(items...), nil
	case "string":
		s, err := unquoteJS(c.text(n))
		if err != nil {
			return descriptor.Value{}, c.errorf(n, "invalid string literal: %v", err)
		}
		return descriptor.String(s), nil
	case "template_string":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if n.NamedChild(i).Kind() == "template_substitution" {
				return descriptor.Value{}, c.errorf(n, "template literals with substitutions are not static data")
			}
		}
		s, err := cookTemplate(c.text(n))
		if err != nil {
			return descriptor.Value{}, c.errorf(n, "invalid template literal: %v", err)
		}
		return descriptor.String(s), nil
	case "number":
		f, err := parseNumber(c.text(n))
		if err != nil {
			return descriptor.Value{}, c.errorf(n, "invalid number %q", c.text(n))
		}
		return descriptor.Number(f), nil
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && (c.text(op) == "-" || c.text(op) == "+") && unwrap(arg).Kind() == "number" {
			f, err := parseNumber(c.text(unwrap(arg)))
			if err != nil {
				return descriptor.Value{}, c.errorf(n, "invalid number %q", c.text(arg))
			}
			if c.text(op) == "-" {
				f = -f
			}
			return descriptor.Number(f), nil
		}
	case "true":
		return descriptor.Bool(true), nil
	case "false":
		return descriptor.Bool(false), nil
	case "null", "undefined":
		return descriptor.Null(), nil
	case "identifier":
		if c.text(n) == "undefined" {
			return descriptor.Null(), nil
		}
	}
	return descriptor.Value{}, c.errorf(n, "unsupported expression %s: %s", n.Kind(), abbreviate(c.text(n)))
}

func (c *converter) object(n *ts.Node) (descriptor.Value, error) {
	var fields []descriptor.Field
	seen := make(map[string]bool)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		entry := n.NamedChild(i)
		switch entry.Kind() {
		case "comment":
			continue
		case "pair":
		default:
			return descriptor.Value{}, c.errorf(entry, "unsupported object entry %s", entry.Kind())
		}

		keyNode := entry.ChildByFieldName("key")
		valueNode := entry.ChildByFieldName("value")
		if keyNode == nil || valueNode == nil {
			return descriptor.Value{}, c.errorf(entry, "malformed object entry")
		}
		key, err := c.key(keyNode)
		if err != nil {
			return descriptor.Value{}, err
		}
		if seen[key] {
			return descriptor.Value{}, c.errorf(keyNode, "duplicate key %q", key)
		}
		seen[key] = true

		var v descriptor.Value
		if key == "hidden" && isFunction(unwrap(valueNode)) {
			v, err = c.predicate(unwrap(valueNode))
		} else {
			v, err = c.value(valueNode)
		}
		if err != nil {
			return descriptor.Value{}, fmt.Errorf("%s: %w", key, err)
		}
		fields = append(fields, descriptor.F(key, v))
	}
	return descriptor.ObjectOf(fields...), nil
}

func (c *converter) key(n *ts.Node) (string, error) {
	switch n.Kind() {
	case "property_identifier", "identifier":
		return c.text(n), nil
	case "string":
		s, err := unquoteJS(c.text(n))
		if err != nil {
			return "", c.errorf(n, "invalid key: %v", err)
		}
		return s, nil
	case "number":
		return c.text(n), nil
	}
	// Reserved words such as default can surface as anonymous keyword nodes.
	if !n.IsNamed() && isWord(c.text(n)) {
		return c.text(n), nil
	}
	return "", c.errorf(n, "unsupported key %s", n.Kind())
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func isFunction(n *ts.Node) bool {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function":
		return true
	}
	return false
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, "_", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	i, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
