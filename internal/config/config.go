package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelConfig selects which embedding model to load.
type ModelConfig struct {
	Type      string `yaml:"type"`
	Dimension int    `yaml:"dimension,omitempty"`
	Path      string `yaml:"path,omitempty"`
	Binary    bool   `yaml:"binary,omitempty"`
}

// CacheConfig configures where models are downloaded and cached.
type CacheConfig struct {
	Dir      string `yaml:"dir"`
	Mirror   string `yaml:"mirror,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// SearchConfig holds the default search parameters.
type SearchConfig struct {
	TopK        int `yaml:"top_k"`
	SearchSpace int `yaml:"search_space"`
}

// DatasetConfig points at the default analogy suite.
type DatasetConfig struct {
	Path    string `yaml:"path"`
	Results string `yaml:"results,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Model   ModelConfig   `yaml:"model"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Dataset DatasetConfig `yaml:"dataset"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/analogy/config.yaml.
// If neither exists, it writes defaults to ~/.config/analogy/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "analogy", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Model:   ModelConfig{Type: "word2vec"},
		Cache:   CacheConfig{Dir: filepath.Join("data", "models")},
		Search:  SearchConfig{TopK: 10},
		Dataset: DatasetConfig{Path: filepath.Join("data", "analogies.csv")},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Model.Type == "" {
		cfg.Model.Type = "word2vec"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join("data", "models")
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 10
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = filepath.Join("data", "analogies.csv")
	}
}
