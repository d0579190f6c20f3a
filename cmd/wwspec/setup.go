package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// serverKey names the wwspec entry in agent MCP configs and is also the
// binary name agents launch.
const serverKey = "wwspec"

// AgentDef defines how to detect and configure one MCP-capable agent.
type AgentDef struct {
	ID          string
	DisplayName string
	Method      string            // "cli" or "file"
	Binary      string            // cli agents: binary name on PATH
	DirMarkers  []string          // file agents: directories that indicate presence
	ConfigPath  func() string     // resolved config file path
	ServersKey  string            // "servers" (VS Code) or "mcpServers"
	NeedsScope  bool              // prompt for project/user scope
	ExtraFields map[string]string // e.g. "type": "stdio" for VS Code
}

// DetectedAgent is an agent found on the system.
type DetectedAgent struct {
	Def            AgentDef
	AlreadySetup   bool
	ResolvedConfig string
}

type setupOptions struct {
	auto       bool
	catalogDir string
}

// serveArgs returns the arguments agents pass to the binary.
func (o setupOptions) serveArgs() []string {
	args := []string{"serve"}
	if o.catalogDir != "" {
		args = append(args, "--catalog-dir", o.catalogDir)
	}
	return args
}

// Replaceable for testing.
var lookPathFunc = exec.LookPath
var statFunc = os.Stat
var runCommandFunc = func(name string, args []string, w io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	return cmd.Run()
}

// agentRegistry lists all supported agents in display order.
var agentRegistry = []AgentDef{
	{
		ID: "claude_code", DisplayName: "Claude Code",
		Method: "cli", Binary: "claude", NeedsScope: true,
	},
	{
		ID: "openai_codex", DisplayName: "OpenAI Codex",
		Method: "cli", Binary: "codex", NeedsScope: true,
	},
	{
		ID: "vscode_copilot", DisplayName: "VS Code Copilot",
		Method: "file", DirMarkers: []string{".vscode"},
		ConfigPath:  func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Method: "file", DirMarkers: []string{".cursor"},
		ConfigPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude_desktop", DisplayName: "Claude Desktop",
		Method:     "file",
		ConfigPath: claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectAgents scans the system for agents that can host the server.
func detectAgents() []DetectedAgent {
	var detected []DetectedAgent
	for _, def := range agentRegistry {
		switch def.Method {
		case "cli":
			if _, err := lookPathFunc(def.Binary); err == nil {
				detected = append(detected, DetectedAgent{
					Def:          def,
					AlreadySetup: hasServerEntry(".mcp.json", "mcpServers"),
				})
			}
		case "file":
			if configPath, ok := locateConfig(def); ok {
				detected = append(detected, DetectedAgent{
					Def:            def,
					ResolvedConfig: configPath,
					AlreadySetup:   configPath != "" && hasServerEntry(configPath, def.ServersKey),
				})
			}
		}
	}
	return detected
}

// locateConfig finds a file agent by its directory markers, or by the
// parent directory of its config for agents without markers.
func locateConfig(def AgentDef) (string, bool) {
	for _, marker := range def.DirMarkers {
		if _, err := statFunc(marker); err == nil {
			if def.ConfigPath == nil {
				return "", true
			}
			return def.ConfigPath(), true
		}
	}
	if len(def.DirMarkers) == 0 && def.ConfigPath != nil {
		configPath := def.ConfigPath()
		if _, err := statFunc(filepath.Dir(configPath)); err == nil {
			return configPath, true
		}
	}
	return "", false
}

// hasServerEntry reports whether the JSON config at path already lists
// the wwspec server under serversKey.
func hasServerEntry(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return false
	}
	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		return false
	}
	_, exists := servers[serverKey]
	return exists
}

func serverEntry(args []string, extra map[string]string) map[string]any {
	argv := make([]any, len(args))
	for i, a := range args {
		argv[i] = a
	}
	entry := map[string]any{
		"command": serverKey,
		"args":    argv,
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry reads existing JSON (or creates new), adds the wwspec
// entry under serversKey, and returns the merged JSON bytes.
// Returns nil, nil if wwspec is already configured.
func mergeServerEntry(existing []byte, serversKey string, args []string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverKey]; exists {
		return nil, nil
	}

	servers[serverKey] = serverEntry(args, extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureCLIAgent runs `<binary> mcp add` with the chosen scope.
func configureCLIAgent(w io.Writer, def AgentDef, scope string, serve []string) error {
	args := []string{"mcp", "add"}
	if scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, serverKey, "--", serverKey)
	args = append(args, serve...)
	return runCommandFunc(def.Binary, args, w)
}

// configureFileAgent merges the server entry into the agent's JSON config.
func configureFileAgent(def AgentDef, configPath string, serve []string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	}

	merged, err := mergeServerEntry(existing, def.ServersKey, serve, def.ExtraFields)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	if merged == nil {
		return nil
	}
	return os.WriteFile(configPath, merged, 0o644)
}

// promptYesNo prints a question and reads Y/n. Returns true for yes (default).
func promptYesNo(in *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !in.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(in.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// promptScope reads 1/2/3 and returns "project", "user", or "" (skip).
func promptScope(in *bufio.Scanner, w io.Writer, agentName string) string {
	fmt.Fprintf(w, "\n%s: add the wwspec MCP server?\n", agentName)
	fmt.Fprintln(w, "  [1] Project scope (shared with team)")
	fmt.Fprintln(w, "  [2] User scope (personal, global)")
	fmt.Fprintln(w, "  [3] Skip")
	fmt.Fprintf(w, "  > ")

	if !in.Scan() {
		return "project"
	}
	switch strings.TrimSpace(in.Text()) {
	case "1", "":
		return "project"
	case "2":
		return "user"
	default:
		return ""
	}
}

// runSetup is the entry point for `wwspec setup`.
func runSetup(args []string, cfg *ProjectConfig, r io.Reader, w io.Writer) error {
	opts, err := parseSetupFlags(args, cfg)
	if err != nil {
		return err
	}
	executeSetup(r, w, opts)
	return nil
}

func parseSetupFlags(args []string, cfg *ProjectConfig) (setupOptions, error) {
	var opts setupOptions
	var catalogDir string
	fs := newFlagSet("setup", nil)
	fs.BoolVar(&opts.auto, "auto", false, "configure every detected agent without prompting")
	fs.StringVar(&catalogDir, "catalog-dir", "", "catalog directory passed to the server")
	if _, err := parseArgs(fs, args, "setup [--auto] [--catalog-dir dir]", 0); err != nil {
		return opts, err
	}
	opts.catalogDir = resolveCatalogDir(catalogDir, cfg)
	return opts, nil
}

// executeSetup contains the testable core logic, parameterized on I/O.
func executeSetup(r io.Reader, w io.Writer, opts setupOptions) {
	detected := detectAgents()
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return
	}

	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}
	fmt.Fprintln(w)

	in := bufio.NewScanner(r)
	if !opts.auto && !promptYesNo(in, w, "Configure agents? [Y/n]") {
		return
	}

	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "\n%s: already configured, skipping\n", d.Def.DisplayName)
			continue
		}
		configureOneAgent(in, w, d, opts)
	}
}

func configureOneAgent(in *bufio.Scanner, w io.Writer, d DetectedAgent, opts setupOptions) {
	switch d.Def.Method {
	case "cli":
		scope := "project"
		if !opts.auto && d.Def.NeedsScope {
			if scope = promptScope(in, w, d.Def.DisplayName); scope == "" {
				fmt.Fprintf(w, "  skipped\n")
				return
			}
		}
		if err := configureCLIAgent(w, d.Def, scope, opts.serveArgs()); err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			return
		}
		fmt.Fprintf(w, "  + %s configured (scope: %s)\n", d.Def.DisplayName, scope)

	case "file":
		if !opts.auto && !promptYesNo(in, w, fmt.Sprintf("\n%s: add to %s? [Y/n]", d.Def.DisplayName, d.ResolvedConfig)) {
			fmt.Fprintf(w, "  skipped\n")
			return
		}
		if err := configureFileAgent(d.Def, d.ResolvedConfig, opts.serveArgs()); err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			return
		}
		fmt.Fprintf(w, "  + %s configured (%s)\n", d.Def.DisplayName, d.ResolvedConfig)
	}
}
