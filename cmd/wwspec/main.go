// Command wwspec validates, inspects and serves page-builder component
// descriptors.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	mcpserver "github.com/gnana997/wwspec/pkg/mcp"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		// validate has already printed its report.
		if !errors.Is(err, errValidation) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return errors.New("missing command")
	}

	cfg, err := loadProjectConfig()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "validate":
		return runValidate(rest, cfg, stdout)
	case "inspect":
		return runInspect(rest, cfg, stdout)
	case "export":
		return runExport(rest, cfg, stdout)
	case "import":
		return runImport(rest, cfg, stdout)
	case "visible":
		return runVisible(rest, cfg, stdout)
	case "serve":
		return runServe(rest, cfg)
	case "setup":
		return runSetup(rest, cfg, stdin, stdout)
	case "version", "--version":
		fmt.Fprintf(stdout, "wwspec %s\n", mcpserver.Version)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wwspec <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate   Validate descriptor files (json, jsonc, yaml, js, ts)")
	fmt.Fprintln(w, "  inspect    Show a component's events and properties")
	fmt.Fprintln(w, "  export     Print a component descriptor as JSON")
	fmt.Fprintln(w, "  import     Convert a ww-config.js/ts file to a JSON descriptor")
	fmt.Fprintln(w, "  visible    Resolve property visibility for given values")
	fmt.Fprintln(w, "  serve      Start MCP server")
	fmt.Fprintln(w, "  setup      Register the MCP server with detected AI agents")
	fmt.Fprintln(w, "  version    Print version")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  --catalog-dir dir   descriptor directory loaded next to the builtin catalog")
	fmt.Fprintln(w, "  --locale code       label locale (default en)")
	fmt.Fprintln(w, "  --log-level level   debug, info, warn or error")
	fmt.Fprintln(w, "  --log-format fmt    text or json")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Defaults for these flags are read from %s.\n", configPath)
}
