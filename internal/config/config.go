package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"ytfetch/pkg/models"
)

var (
	ErrInvalidPort      = errors.New("invalid port: must be between 1 and 65535")
	ErrInvalidOutputDir = errors.New("invalid output directory: must not be empty")
	ErrInvalidTimeout   = errors.New("invalid job timeout: must be non-negative")
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)

// Manager handles configuration loading, saving, and updates.
// Files ending in .yaml or .yml are read and written as YAML, anything else as JSON.
type Manager struct {
	mu         sync.RWMutex
	config     *models.Config
	configPath string
}

// NewManager creates a new configuration manager
// If the config file doesn't exist, it creates one with default values
func NewManager(configPath string) (*Manager, error) {
	manager := &Manager{
		configPath: configPath,
		config:     models.DefaultConfig(),
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := manager.load(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := manager.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	if err := Validate(manager.config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return manager, nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *models.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	cfg.AllowedDirs = append([]string(nil), m.config.AllowedDirs...)
	return &cfg
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Update applies a function to the configuration and saves it.
// The change is discarded when the result does not validate.
func (m *Manager) Update(fn func(*models.Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := *m.config
	next.AllowedDirs = append([]string(nil), m.config.AllowedDirs...)
	fn(&next)

	if err := Validate(&next); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	m.config = &next
	return m.save()
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save()
}

// load reads configuration from disk; fields absent from the file keep
// their defaults
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := models.DefaultConfig()
	if isYAML(m.configPath) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}

	m.config = mergeWithDefaults(cfg)

	return nil
}

// save writes configuration to disk (must be called with lock held)
func (m *Manager) save() error {
	var data []byte
	var err error
	if isYAML(m.configPath) {
		data, err = yaml.Marshal(m.config)
	} else {
		data, err = json.MarshalIndent(m.config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isYAML reports whether the config file uses YAML instead of JSON
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// mergeWithDefaults fills in values that were explicitly blanked
func mergeWithDefaults(cfg *models.Config) *models.Config {
	defaults := models.DefaultConfig()

	if cfg.ServerHost == "" {
		cfg.ServerHost = defaults.ServerHost
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = defaults.ServerPort
	}
	if cfg.FfmpegPath == "" {
		cfg.FfmpegPath = defaults.FfmpegPath
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.AllowedDirs == nil {
		cfg.AllowedDirs = defaults.AllowedDirs
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}

	return cfg
}

// Validate checks if the configuration is valid
func Validate(cfg *models.Config) error {
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return ErrInvalidPort
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		return ErrInvalidOutputDir
	}

	if cfg.JobTimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// GetDataDir returns the application data directory
func GetDataDir() string {
	if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
		dataDir := filepath.Join(appData, "ytfetch")
		os.MkdirAll(dataDir, 0755)
		return dataDir
	}

	if home, err := os.UserHomeDir(); err == nil {
		dataDir := filepath.Join(home, ".ytfetch")
		os.MkdirAll(dataDir, 0755)
		return dataDir
	}

	return "."
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(GetDataDir(), "config.json")
}

// GetUtilsDir returns where the managed yt-dlp binary lives
func GetUtilsDir() string {
	return filepath.Join(GetDataDir(), "utils")
}
