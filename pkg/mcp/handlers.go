package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/wwspec/pkg/descriptor"
	"github.com/gnana997/wwspec/pkg/parser"
)

type visibilityResult struct {
	Component string   `json:"component"`
	Visible   []string `json:"visible"`
	Hidden    []string `json:"hidden"`
}

type layoutResult struct {
	Component string                     `json:"component"`
	Panel     descriptor.Panel           `json:"panel"`
	Sections  []descriptor.SectionLayout `json:"sections"`
}

type validationResult struct {
	Valid      bool     `json:"valid"`
	Properties int      `json:"properties,omitempty"`
	Events     int      `json:"events,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.query.ListComponents(req.GetString("keyword", "")))
}

func (s *Server) handleGetDescriptor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, ok := s.query.GetComponent(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component %q not found", name)), nil
	}
	return jsonResult(e.Descriptor)
}

func (s *Server) handleListEvents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := s.query.ListEvents(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(events)
}

func (s *Server) handleListProperties(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	props, err := s.query.ListProperties(name, req.GetString("section", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(props)
}

func (s *Server) handleSearchProperties(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.query.SearchProperties(query)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no properties found matching %q", query)), nil
	}
	return jsonResult(results)
}

func (s *Server) handleResolveVisibility(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := valuesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, ok := s.query.GetComponent(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component %q not found", name)), nil
	}
	vis, err := s.resolver.Visibility(name, values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := visibilityResult{Component: name, Visible: []string{}, Hidden: []string{}}
	for _, prop := range e.Descriptor.PropertyNames() {
		if vis[prop] {
			result.Visible = append(result.Visible, prop)
		} else {
			result.Hidden = append(result.Hidden, prop)
		}
	}
	return jsonResult(result)
}

func (s *Server) handleGetLayout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	panel, err := req.RequireString("panel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := valuesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	layout, err := s.resolver.Layout(name, descriptor.Panel(panel), values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if layout == nil {
		layout = []descriptor.SectionLayout{}
	}
	return jsonResult(layoutResult{Component: name, Panel: descriptor.Panel(panel), Sections: layout})
}

func (s *Server) handleValidateDescriptor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var d *descriptor.Descriptor
	switch format := req.GetString("format", string(descriptor.FormatJSON)); format {
	case "js", "ts":
		if s.importer == nil {
			return mcp.NewToolResultError("script descriptors are not supported by this server"), nil
		}
		lang := parser.LanguageJavaScript
		if format == "ts" {
			lang = parser.LanguageTypeScript
		}
		d, err = s.importer.Import([]byte(source), lang)
	default:
		d, err = descriptor.ParseFormat([]byte(source), descriptor.Format(format))
	}

	if err != nil {
		return jsonResult(validationResult{Valid: false, Errors: descriptor.Problems(err)})
	}
	return jsonResult(validationResult{
		Valid:      true,
		Properties: d.Properties.Len(),
		Events:     len(d.TriggerEvents),
	})
}

// valuesArg decodes the optional "values" object argument.
func valuesArg(req mcp.CallToolRequest) (descriptor.Values, error) {
	raw, ok := req.GetArguments()["values"]
	if !ok || raw == nil {
		return descriptor.Values{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("values must be an object keyed by property name")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("invalid values: %w", err)
	}
	return descriptor.DecodeValues(data)
}
