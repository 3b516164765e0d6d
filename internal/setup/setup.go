// Package setup registers the MCP server with desktop MCP clients.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerName is the key the server is registered under in the client config
const ServerName = "uvecheck"

// BinaryName is the MCP server executable built from cmd/mcp-server
const BinaryName = "uvecheck-mcp-server"

// DesktopConfig represents the desktop client configuration file structure.
type DesktopConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`

	// Keys other than mcpServers are preserved on save
	extra map[string]json.RawMessage
}

// MCPServerConfig represents a single MCP server configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options contains options for the setup process.
type Options struct {
	ConfigPath string            // Client config file; defaults to the platform location
	BinaryPath string            // Path to the server binary; searched for when empty
	Env        map[string]string // UVECHECK_* settings passed to the server
}

// Status represents the current setup status.
type Status struct {
	ConfigPath string   `json:"config_path"`
	Configured bool     `json:"configured"`
	ServerPath string   `json:"server_path,omitempty"`
	Issues     []string `json:"issues,omitempty"`
}

// DefaultConfigPath returns the desktop client's config file for the platform.
func DefaultConfigPath() (string, error) {
	return configPathFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func configPathFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	var configDir string

	switch goos {
	case "darwin":
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(h, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "Claude")
			break
		}
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(h, ".config", "Claude")
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadConfig loads the client configuration. A missing file yields an empty config.
func LoadConfig(configPath string) (*DesktopConfig, error) {
	config := &DesktopConfig{MCPServers: make(map[string]MCPServerConfig)}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if servers, ok := config.extra["mcpServers"]; ok {
		if err := json.Unmarshal(servers, &config.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(config.extra, "mcpServers")
	}
	if config.MCPServers == nil {
		config.MCPServers = make(map[string]MCPServerConfig)
	}

	return config, nil
}

// SaveConfig writes the configuration, creating the directory if needed.
func SaveConfig(configPath string, config *DesktopConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]interface{}, len(config.extra)+1)
	for k, v := range config.extra {
		out[k] = v
	}
	out["mcpServers"] = config.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Configure adds or updates the screening server in the client config and
// returns the path that was written.
func Configure(opts Options) (string, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		if configPath, err = DefaultConfigPath(); err != nil {
			return "", err
		}
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return "", err
	}

	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		if binaryPath, err = findBinary(); err != nil {
			return "", fmt.Errorf("could not find server binary: %w", err)
		}
	}

	config.MCPServers[ServerName] = MCPServerConfig{
		Command: binaryPath,
		Args:    []string{"--stdio"},
		Env:     opts.Env,
	}

	if err := SaveConfig(configPath, config); err != nil {
		return "", err
	}
	return configPath, nil
}

// GetStatus reports whether the server is registered and its binary exists.
func GetStatus(configPath string) (*Status, error) {
	if configPath == "" {
		var err error
		if configPath, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}

	status := &Status{ConfigPath: configPath}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	serverConfig, ok := config.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "server not registered with the desktop client")
		return status, nil
	}

	status.Configured = true
	status.ServerPath = serverConfig.Command
	info, err := os.Stat(serverConfig.Command)
	switch {
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", serverConfig.Command))
	case runtime.GOOS != "windows" && info.Mode()&0111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", serverConfig.Command))
	}

	return status, nil
}

// findBinary attempts to find the server binary in common locations.
func findBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	locations := []string{
		"./" + BinaryName,
		"./build/" + BinaryName,
		filepath.Join(os.Getenv("HOME"), ".local", "bin", BinaryName),
		"/usr/local/bin/" + BinaryName,
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			if absPath, err := filepath.Abs(loc); err == nil {
				return absPath, nil
			}
			return loc, nil
		}
	}

	return "", fmt.Errorf("binary '%s' not found in common locations", BinaryName)
}
