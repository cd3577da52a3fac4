// Package config loads the deskmesh service configuration from a YAML
// file. A missing file is not an error; defaults describe a complete
// single-host deployment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServiceConfig is the listen address of one deskmesh service.
type ServiceConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServiceConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// URL returns the base URL clients use to reach the service.
func (s ServiceConfig) URL() string { return fmt.Sprintf("http://%s:%d", s.Host, s.Port) }

// ServicesConfig holds the addresses of every service in the mesh.
type ServicesConfig struct {
	Supervisor ServiceConfig `yaml:"supervisor"`
	Windows    ServiceConfig `yaml:"windows"`
	Office     ServiceConfig `yaml:"office"`
	Hardware   ServiceConfig `yaml:"hardware"`
	Knowledge  ServiceConfig `yaml:"knowledge"`
}

// Specialist returns the service config for a specialist domain.
func (s ServicesConfig) Specialist(domain string) (ServiceConfig, bool) {
	switch domain {
	case "windows":
		return s.Windows, true
	case "office":
		return s.Office, true
	case "hardware":
		return s.Hardware, true
	}
	return ServiceConfig{}, false
}

// KnowledgeConfig configures the knowledge store.
type KnowledgeConfig struct {
	Dir         string `yaml:"dir"`
	SearchLimit int    `yaml:"search_limit"`
}

// ModelConfig selects a generation backend for one role.
type ModelConfig struct {
	Provider  string `yaml:"provider"` // "openai", "anthropic" or "mock"
	Name      string `yaml:"name"`
	Reasoning bool   `yaml:"reasoning"` // OpenAI reasoning-series model
}

// ModelsConfig holds the per-role model selections.
type ModelsConfig struct {
	Routing    ModelConfig `yaml:"routing"`
	Specialist ModelConfig `yaml:"specialist"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Config is the root configuration structure.
type Config struct {
	Logging             LoggingConfig   `yaml:"logging"`
	Knowledge           KnowledgeConfig `yaml:"knowledge"`
	Services            ServicesConfig  `yaml:"services"`
	Models              ModelsConfig    `yaml:"models"`
	DispatchTimeoutSecs int             `yaml:"dispatch_timeout_secs"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault reads ./config.yaml if present, otherwise returns defaults.
func LoadDefault() (*Config, error) {
	return Load("config.yaml")
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Knowledge.Dir == "" {
		cfg.Knowledge.Dir = "kb"
	}
	if cfg.Knowledge.SearchLimit == 0 {
		cfg.Knowledge.SearchLimit = 5
	}
	applyServiceDefaults(&cfg.Services.Supervisor, 8001)
	applyServiceDefaults(&cfg.Services.Windows, 8002)
	applyServiceDefaults(&cfg.Services.Office, 8003)
	applyServiceDefaults(&cfg.Services.Hardware, 8004)
	applyServiceDefaults(&cfg.Services.Knowledge, 8005)
	if cfg.Models.Routing.Provider == "" {
		cfg.Models.Routing = ModelConfig{Provider: "openai", Name: "o3-mini", Reasoning: true}
	}
	if cfg.Models.Specialist.Provider == "" {
		cfg.Models.Specialist = ModelConfig{Provider: "openai", Name: "gpt-4o"}
	}
	if cfg.DispatchTimeoutSecs == 0 {
		cfg.DispatchTimeoutSecs = 30
	}
}

func applyServiceDefaults(s *ServiceConfig, port int) {
	if s.Host == "" {
		s.Host = "localhost"
	}
	if s.Port == 0 {
		s.Port = port
	}
}
