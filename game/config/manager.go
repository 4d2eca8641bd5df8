package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// BuiltinConfigID names the compiled-in Shanghai board. A file with the same
// name in the config directory takes precedence.
const BuiltinConfigID = "shanghai"

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

func (m *Manager) loadLocked(name string) (*engine.GameConfig, error) {
	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}
	if strings.ContainsAny(name, `/\`) || name == "" || name == "." || name == ".." {
		return nil, ErrConfigNotFound
	}

	data, err := os.ReadFile(m.configPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			if name == BuiltinConfigID {
				config := engine.DefaultGameConfig()
				m.configs[name] = config
				return config, nil
			}
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	seenBuiltin := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}
		if name == BuiltinConfigID {
			seenBuiltin = true
		}
		configs = append(configs, describe(entry.Name(), name, config))
	}

	if !seenBuiltin {
		config, err := m.LoadConfig(BuiltinConfigID)
		if err == nil {
			configs = append(configs, describe("", BuiltinConfigID, config))
		}
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

func describe(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	branches := 0
	for _, sc := range config.Board {
		if len(sc.Successors) > 1 {
			branches++
		}
	}
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		Spaces:      len(config.Board),
		Branches:    branches,
		Characters:  len(config.CharacterPool()),
	}
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations so the next load reads from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration: shanghai (from disk or
// built in).
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(BuiltinConfigID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a configuration and writes it to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func (m *Manager) configPath(name string) string {
	return filepath.Join(m.configDir, name+".json")
}
