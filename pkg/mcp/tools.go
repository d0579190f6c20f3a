package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("List registered page-builder components with their label, icon and property/event counts. Optionally filter by a keyword matched against name and label."),
		mcp.WithString("keyword", mcp.Description("Case-insensitive substring of the component name or label")),
	)
}

func getDescriptorTool() mcp.Tool {
	return mcp.NewTool("get_descriptor",
		mcp.WithDescription("Return the full component descriptor (editor metadata, trigger events, property definitions) as JSON."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name, e.g. email-composer")),
	)
}

func listEventsTool() mcp.Tool {
	return mcp.NewTool("list_events",
		mcp.WithDescription("List the trigger events a component emits, with labels, payload templates and the default flag."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name")),
	)
}

func listPropertiesTool() mcp.Tool {
	return mcp.NewTool("list_properties",
		mcp.WithDescription("List a component's configurable properties in declaration order: type, section, panel, default, options and hidden predicate."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name")),
		mcp.WithString("section", mcp.Description("Only properties of this section, e.g. templateSettings")),
	)
}

func searchPropertiesTool() mcp.Tool {
	return mcp.NewTool("search_properties",
		mcp.WithDescription("Search properties of all components by name, label (any locale) or section."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive search text")),
	)
}

func resolveVisibilityTool() mcp.Tool {
	return mcp.NewTool("resolve_visibility",
		mcp.WithDescription("Evaluate hidden predicates for the given property values. Undefined values take their declared defaults."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name")),
		mcp.WithObject("values", mcp.Description("Current property values keyed by property name")),
	)
}

func getLayoutTool() mcp.Tool {
	return mcp.NewTool("get_layout",
		mcp.WithDescription("Return the visible properties of one editor panel grouped by section, in the panel's section order."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name")),
		mcp.WithString("panel", mcp.Required(), mcp.Enum("style", "settings"), mcp.Description("Editor panel")),
		mcp.WithObject("values", mcp.Description("Current property values keyed by property name")),
	)
}

func validateDescriptorTool() mcp.Tool {
	return mcp.NewTool("validate_descriptor",
		mcp.WithDescription("Validate a descriptor source and report every problem: unknown sections, default/type mismatches, option and item schema violations, duplicate names, bad predicates."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Descriptor text")),
		mcp.WithString("format", mcp.Enum("json", "jsonc", "yaml", "js", "ts"), mcp.Description("Encoding of source (default json)")),
	)
}
