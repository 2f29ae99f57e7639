package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and fills defaults. It does not validate:
// environment and flags may still complete the config, so callers run
// Validate once every layer is applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOptional behaves like Load but falls back to defaults when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides config values from environment variables. Only values
// that fail to parse are reported; call Validate afterwards.
// The variable names match the .env files the pipeline has always accepted.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("OLLAMA_URL"); v != "" {
		c.LLM.URL = v
	}
	if v := getenv("OLLAMA_MODEL"); v != "" {
		c.LLM.SetModel(v)
	}
	if v := getenv("OLLAMA_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OLLAMA_TIMEOUT: %w", err)
		}
		c.LLM.TimeoutSeconds = n
	}
	if v := getenv("GEMINI_API_KEYS"); v != "" {
		c.LLM.APIKeys = splitList(v)
	}
	if v := getenv("DEFAULT_OUTPUT_DIR"); v != "" {
		c.Paths.Output = v
	}
	if v := getenv("DEFAULT_LOG_DIR"); v != "" {
		c.Paths.Logs = v
	}
	if v := getenv("DEFAULT_MODEL_PATH"); v != "" {
		c.Denoise.ModelPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	c.applyDefaults()
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
