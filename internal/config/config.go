package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor WEBPANIM_CONFIG is set.
const DefaultPath = "config/webpanim.yaml"

type Config struct {
	// LibWebPDir is the libwebp installation's bin directory.
	// img2webp, webpinfo and cwebp are looked up there before PATH.
	LibWebPDir string `yaml:"libwebp_dir"`

	// FFmpegPath is the path to ffmpeg binary (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Img2WebPPath, WebPInfoPath and CWebPPath override the lookup in
	// LibWebPDir for a single tool.
	Img2WebPPath string `yaml:"img2webp_path"`
	WebPInfoPath string `yaml:"webpinfo_path"`
	CWebPPath    string `yaml:"cwebp_path"`

	// Workers is the number of concurrent per-file tool invocations
	// during filtering and normalization (default 1)
	Workers int `yaml:"workers"`

	// LogLevel is one of debug, info, warn, error (default info)
	LogLevel string `yaml:"log_level"`

	// HistoryPath is the SQLite database recording finished runs.
	// Empty disables the history.
	HistoryPath string `yaml:"history_path"`

	// KeepTemp keeps the normalization directory after a successful encode
	KeepTemp bool `yaml:"keep_temp"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FFmpegPath: "ffmpeg",
		Workers:    1,
		LogLevel:   "info",
		KeepTemp:   true,
	}
}

// Load reads config from a YAML file, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file - use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for empty values
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// ApplyEnv overrides tool locations from FFMPEG_PATH and LIBWEBP_DIR.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv("LIBWEBP_DIR"); v != "" {
		c.LibWebPDir = v
	}
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolvePath picks the config file location: explicit flag first, then
// WEBPANIM_CONFIG, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("WEBPANIM_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}
