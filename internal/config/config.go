package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Denoise     DenoiseConfig     `yaml:"denoise"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Tools       ToolsConfig       `yaml:"tools"`
	Export      ExportConfig      `yaml:"export"`
}

// LLMConfig configures the transcript cleanup service.
type LLMConfig struct {
	Provider       string        `yaml:"provider"` // ollama or gemini
	URL            string        `yaml:"url"`
	Model          string        `yaml:"model"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	MaxRetries     *int          `yaml:"max_retries"` // unset means 3; 0 disables retries
	Backoff        time.Duration `yaml:"backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	Mode           string        `yaml:"mode"` // segment or document
	APIKeys        []string      `yaml:"api_keys"`

	// modelDefaulted is set when Model was filled in for the provider rather
	// than configured, so a later provider change picks that provider's model.
	modelDefaulted bool
}

type DenoiseConfig struct {
	ModelPath string `yaml:"model_path"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	Binary       string `yaml:"binary"`
	ProbeBinary  string `yaml:"probe_binary"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Logs   string `yaml:"logs"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// ToolsConfig bounds every local tool invocation (ffmpeg, ffprobe, whisper).
type ToolsConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type ExportConfig struct {
	Docx bool `yaml:"docx"`
}

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	ModeSegment  = "segment"
	ModeDocument = "document"
)

const defaultMaxRetries = 3

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Retries is the number of retries after the first LLM attempt.
func (c *LLMConfig) Retries() int {
	if c.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.MaxRetries
}

// SetModel sets an explicitly chosen model.
func (c *LLMConfig) SetModel(model string) {
	c.Model = model
	c.modelDefaulted = false
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "llama3"
}

// RequestTimeout is the per-attempt deadline for LLM calls.
func (c *LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout is the deadline applied to each local tool invocation.
func (c *ToolsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// applyDefaults fills every unset value. It never fails, so each config
// layer can call it and leave validation to the final one.
func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOllama
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.LLM.URL == "" {
		c.LLM.URL = "http://localhost:11434"
	}
	if c.LLM.Model == "" || c.LLM.modelDefaulted {
		c.LLM.Model = defaultModel(c.LLM.Provider)
		c.LLM.modelDefaulted = true
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 300
	}
	if c.LLM.MaxRetries == nil {
		n := defaultMaxRetries
		c.LLM.MaxRetries = &n
	}
	if c.LLM.Backoff == 0 {
		c.LLM.Backoff = time.Second
	}
	if c.LLM.MaxBackoff == 0 {
		c.LLM.MaxBackoff = 30 * time.Second
	}
	if c.LLM.Mode == "" {
		c.LLM.Mode = ModeSegment
	}
	if c.Denoise.ModelPath == "" {
		c.Denoise.ModelPath = "models/arnndn/lq.rnnn"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = "models/ggml-base.bin"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = "192k"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = "data/logs"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Tools.TimeoutSeconds == 0 {
		c.Tools.TimeoutSeconds = 1800
	}
}

// Validate fills defaults and rejects values the pipeline cannot run with.
// It is meant to run once, after every layer has been applied.
func (c *Config) Validate() error {
	c.applyDefaults()

	switch c.LLM.Provider {
	case ProviderOllama:
		u, err := url.Parse(c.LLM.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("llm.url %q is not an absolute URL", c.LLM.URL)
		}
	case ProviderGemini:
		if len(c.LLM.APIKeys) == 0 {
			return fmt.Errorf("llm.api_keys is required for the gemini provider")
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Mode != ModeSegment && c.LLM.Mode != ModeDocument {
		return fmt.Errorf("llm.mode %q must be %q or %q", c.LLM.Mode, ModeSegment, ModeDocument)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive")
	}
	if c.LLM.Retries() < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	if c.Performance.MaxConcurrent < 0 {
		return fmt.Errorf("performance.max_concurrent must be positive")
	}
	if c.Tools.TimeoutSeconds < 0 {
		return fmt.Errorf("tools.timeout_seconds must be positive")
	}

	return nil
}
