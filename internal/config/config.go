package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type StoreConfig struct {
	Backend       string `toml:"backend"` // memory | sqlite | graph
	SQLitePath    string `toml:"sqlite_path"`
	GraphURI      string `toml:"graph_uri"`
	GraphUser     string `toml:"graph_user"`
	GraphPassword string `toml:"graph_password"`
}

type DetectionConfig struct {
	Threshold float64 `toml:"threshold"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type ExtractionConfig struct {
	// PeoplePrompt overrides the built-in oracle prompt. Must keep a single
	// %s verb for the narrative text.
	PeoplePrompt string `toml:"people_prompt"`
}

type ConcurrencyConfig struct {
	Ingest int `toml:"ingest"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Store       StoreConfig       `toml:"store"`
	Detection   DetectionConfig   `toml:"detection"`
	LLM         LLMConfig         `toml:"llm"`
	Extraction  ExtractionConfig  `toml:"extraction"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a runnable configuration when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Detection.Threshold == 0 {
		c.Detection.Threshold = 0.7
	}
	if c.Concurrency.Ingest <= 0 {
		c.Concurrency.Ingest = 4
	}
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Store.Backend, "STORE_BACKEND")
	set(&c.Store.SQLitePath, "STORE_SQLITE_PATH")
	set(&c.Store.GraphURI, "GRAPH_URI")
	set(&c.Store.GraphUser, "GRAPH_USER")
	set(&c.Store.GraphPassword, "GRAPH_PASSWORD")
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
}
