// Package setup writes MCP client configuration entries for the lite server.
package setup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultServerName is the key the lite server is registered under.
const DefaultServerName = "oncology-cds"

// BinaryName is the lite server executable name.
const BinaryName = "oncocds-mcp-lite"

// ClientConfig is the MCP client configuration file layout.
type ClientConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
}

// ServerEntry launches one MCP server.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options describe the lite server entry.
type Options struct {
	Name          string
	BinaryPath    string
	DataDir       string
	CataloguePath string
}

// Entry builds the server entry for opts. The binary is looked up on PATH and next to
// the running executable when BinaryPath is empty.
func Entry(opts Options) (ServerEntry, error) {
	binary := opts.BinaryPath
	if binary == "" {
		found, err := findBinary()
		if err != nil {
			return ServerEntry{}, err
		}
		binary = found
	}

	entry := ServerEntry{Command: binary, Env: map[string]string{}}
	if opts.DataDir != "" {
		entry.Env["ONCOCDS_DATA_DIR"] = opts.DataDir
	}
	if opts.CataloguePath != "" {
		entry.Env["ONCOCDS_CATALOGUE_PATH"] = opts.CataloguePath
	}
	return entry, nil
}

// Print writes a client configuration containing only the lite server entry.
func Print(w io.Writer, opts Options) error {
	entry, err := Entry(opts)
	if err != nil {
		return err
	}
	cfg := ClientConfig{MCPServers: map[string]ServerEntry{serverName(opts): entry}}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// Register adds or replaces the lite server entry in the client configuration file,
// keeping every other server.
func Register(configPath string, opts Options) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	entry, err := Entry(opts)
	if err != nil {
		return err
	}
	cfg.MCPServers[serverName(opts)] = entry
	return Save(configPath, cfg)
}

// Load reads a client configuration. A missing file yields an empty configuration.
func Load(configPath string) (*ClientConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ClientConfig{MCPServers: make(map[string]ServerEntry)}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]ServerEntry)
	}
	return &cfg, nil
}

// Save writes the configuration, creating its directory.
func Save(configPath string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func serverName(opts Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	return DefaultServerName
}

func findBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), BinaryName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		// The running executable is the lite server itself.
		return exe, nil
	}
	return "", fmt.Errorf("%s not found on PATH", BinaryName)
}
