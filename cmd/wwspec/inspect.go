package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnana997/wwspec/pkg/catalog"
	"github.com/gnana997/wwspec/pkg/descriptor"
)

const (
	maxWidth        = 80
	maxDefaultWidth = 28
)

// printComponentHuman prints a human-readable descriptor summary.
func printComponentHuman(w io.Writer, e *catalog.Entry, locale string) {
	d := e.Descriptor

	header := e.Name
	if label := descriptor.Localize(d.Editor.Label, locale); label != "" {
		header += fmt.Sprintf("  [%s]", label)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "  icon: %s", d.Editor.Icon)
	if d.Editor.Bubble != nil {
		fmt.Fprintf(w, "  bubble: %s", d.Editor.Bubble.Icon)
	}
	fmt.Fprintln(w)
	if e.Source != "" {
		fmt.Fprintf(w, "  source: %s\n", e.Source)
	}

	fmt.Fprintln(w)
	printEvents(w, d.TriggerEvents, locale)

	for _, panel := range []descriptor.Panel{descriptor.PanelStyle, descriptor.PanelSettings} {
		fmt.Fprintln(w)
		sections := d.Sections(panel)
		title := strings.ToUpper(string(panel[:1])) + string(panel[1:]) + " panel"
		if len(sections) == 0 {
			fmt.Fprintf(w, "%s  (none)\n", title)
			continue
		}
		fmt.Fprintln(w, title)
		for _, section := range sections {
			var props []*descriptor.Property
			for _, p := range d.Properties.All() {
				if p.Section == section {
					props = append(props, p)
				}
			}
			printPropsSection(w, "  "+section, props, locale)
		}
	}
}

func printEvents(w io.Writer, events []descriptor.TriggerEvent, locale string) {
	if len(events) == 0 {
		fmt.Fprintln(w, "Trigger events  (none)")
		return
	}
	fmt.Fprintln(w, "Trigger events")
	nameW := 0
	for _, ev := range events {
		if len(ev.Name) > nameW {
			nameW = len(ev.Name)
		}
	}
	for _, ev := range events {
		def := ""
		if ev.Default {
			def = "  [default]"
		}
		fmt.Fprintf(w, "  %-*s  %s%s\n", nameW, ev.Name, descriptor.Localize(ev.Label, locale), def)
	}
}

// printPropsSection renders the properties table with dynamic column widths.
func printPropsSection(w io.Writer, title string, props []*descriptor.Property, locale string) {
	if len(props) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	// Compute column widths.
	nameW := len("NAME")
	typeW := len("TYPE")
	defW := len("DEFAULT")
	for _, p := range props {
		if len(p.Name) > nameW {
			nameW = len(p.Name)
		}
		if len(p.Type) > typeW {
			typeW = len(p.Type)
		}
		if def := defaultText(p); len(def) > defW {
			defW = len(def)
		}
	}

	indent := "    "
	sepLen := nameW + typeW + defW + 4 + 4 + 2 // NAME + TYPE + DEFAULT + "BIND" + spacing
	fmt.Fprintf(w, "%s%-*s  %-*s  %-*s  %s\n", indent, nameW, "NAME", typeW, "TYPE", defW, "DEFAULT", "BIND")
	fmt.Fprintf(w, "%s%s\n", indent, strings.Repeat("─", sepLen))

	pad := indent + strings.Repeat(" ", nameW) + "  "
	for _, p := range props {
		bind := "no"
		if p.Bindable {
			bind = "yes"
		}
		fmt.Fprintf(w, "%s%-*s  %-*s  %-*s  %s\n",
			indent, nameW, p.Name, typeW, p.Type, defW, defaultText(p), bind)

		if label := descriptor.Localize(p.Label, locale); label != "" {
			fmt.Fprintf(w, "%s%s\n", pad, label)
		}
		if values := p.Options.ChoiceValues(); len(values) > 0 {
			allowed := strings.Join(values, " | ")
			fmt.Fprintf(w, "%soptions: %s\n", pad, wrapAllowed(allowed, len(pad)+len("options: ")))
		}
		if p.Options != nil && p.Options.ItemFields != nil {
			var keys []string
			for pair := p.Options.ItemFields.Oldest(); pair != nil; pair = pair.Next() {
				keys = append(keys, pair.Key+":"+string(pair.Value.Type))
			}
			fmt.Fprintf(w, "%sitem: {%s}\n", pad, strings.Join(keys, ", "))
		} else if p.Options != nil && p.Options.Item != nil {
			fmt.Fprintf(w, "%sitem: %s\n", pad, p.Options.Item.Type)
		}
		if p.Hidden != nil {
			fmt.Fprintf(w, "%shidden: %s\n", pad, conditionText(p.Hidden))
		}
	}
}

// defaultText renders a default value for the table, summarizing
// collections that would not fit a column.
func defaultText(p *descriptor.Property) string {
	if !p.HasDefault() {
		return "—"
	}
	v := *p.DefaultValue
	s := v.String()
	if len(s) <= maxDefaultWidth {
		return s
	}
	switch v.Kind() {
	case descriptor.KindList:
		return fmt.Sprintf("[%d items]", v.Len())
	case descriptor.KindObject:
		return fmt.Sprintf("{%d keys}", v.Len())
	}
	return s[:maxDefaultWidth-3] + "..."
}

// conditionText renders a hidden predicate the way an author would write it.
func conditionText(c *descriptor.Condition) string {
	switch c.Op {
	case descriptor.OpFalsy:
		return "unless " + c.Property
	case descriptor.OpTruthy:
		return "when " + c.Property
	case descriptor.OpEquals, descriptor.OpNotEquals:
		op := "=="
		if c.Op == descriptor.OpNotEquals {
			op = "!="
		}
		value := "null"
		if c.Value != nil {
			value = c.Value.String()
		}
		return fmt.Sprintf("when %s %s %s", c.Property, op, value)
	}
	return string(c.Op)
}

// wrapAllowed wraps the allowed values string if it exceeds maxWidth.
func wrapAllowed(allowed string, indent int) string {
	if indent+len(allowed) <= maxWidth {
		return allowed
	}
	parts := strings.Split(allowed, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3 // " | "
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}
