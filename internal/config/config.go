package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codesan/internal/redact"
)

// ProjectFile is the per-project config file looked up in the working
// directory.
const ProjectFile = ".codesan.yaml"

// Config represents the codesan configuration.
type Config struct {
	Prefix     string   `json:"prefix" yaml:"prefix"`
	Recursive  bool     `json:"recursive" yaml:"recursive"`
	Skip       []string `json:"skip,omitempty" yaml:"skip,omitempty"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// Threshold is the number of distinct placeholders that marks a file
	// as already sanitized. Negative disables the check.
	Threshold      int         `json:"threshold" yaml:"threshold"`
	Format         string      `json:"format" yaml:"format"`
	Jobs           int         `json:"jobs" yaml:"jobs"`
	MatchTimeoutMs int         `json:"matchTimeoutMs,omitempty" yaml:"matchTimeoutMs,omitempty"`
	Cache          CacheConfig `json:"cache" yaml:"cache"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Prefix:    "sanitized_",
		Threshold: 3,
		Format:    "text",
		Exclude:   []string{"**/*.min.js", "**/node_modules/*"},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 7 * 86400,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for codesan.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codesan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codesan"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codesan"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codesan"), nil
	default:
		return filepath.Join(home, ".config", "codesan"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadProjectFile loads .codesan.yaml from dir. Returns zero Config and nil
// error if the file doesn't exist.
func LoadProjectFile(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading project config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing project config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveProjectFile writes cfg as ProjectFile in dir.
func SaveProjectFile(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling project config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ProjectFile), data, 0o644)
}

// Source describes one configuration layer and whether it was found.
type Source struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
	// Keys lists the CODESAN_* variables set by an env layer.
	Keys []string `json:"keys,omitempty"`
}

// Sources reports the layers Load reads, in merge order.
func Sources() ([]Source, error) {
	userPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	dotenv, err := readDotenv(".env")
	if err != nil {
		return nil, err
	}
	var envKeys, dotenvKeys []string
	for _, key := range envVars {
		if os.Getenv(key) != "" {
			envKeys = append(envKeys, key)
		}
		if dotenv[key] != "" {
			dotenvKeys = append(dotenvKeys, key)
		}
	}
	return []Source{
		{Name: "defaults", Found: true},
		{Name: "user", Path: userPath, Found: fileExists(userPath)},
		{Name: "project", Path: ProjectFile, Found: fileExists(ProjectFile)},
		{Name: "dotenv", Path: ".env", Found: dotenv != nil, Keys: dotenvKeys},
		{Name: "env", Found: len(envKeys) > 0, Keys: envKeys},
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load builds the effective config by merging:
// defaults <- user file <- project file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)

	projCfg, err := LoadProjectFile(".")
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, projCfg)

	dotenv, err := readDotenv(".env")
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg, dotenv); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// readDotenv parses a .env file without touching the process environment.
func readDotenv(path string) (map[string]string, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Prefix != "" {
		dst.Prefix = src.Prefix
	}
	if len(src.Skip) > 0 {
		dst.Skip = src.Skip
	}
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.Threshold != 0 {
		dst.Threshold = src.Threshold
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Jobs > 0 {
		dst.Jobs = src.Jobs
	}
	if src.MatchTimeoutMs > 0 {
		dst.MatchTimeoutMs = src.MatchTimeoutMs
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// A false bool can't be told apart from an unset one, so files can only
	// switch these on.
	dst.Recursive = src.Recursive || dst.Recursive
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
}

var envVars = []string{
	"CODESAN_PREFIX", "CODESAN_FORMAT", "CODESAN_SKIP", "CODESAN_THRESHOLD",
	"CODESAN_JOBS", "CODESAN_CACHE", "CODESAN_CACHE_DIR",
}

func mergeEnv(cfg *Config, dotenv map[string]string) error {
	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	for _, key := range envVars {
		v := get(key)
		if v == "" {
			continue
		}
		field := strings.TrimPrefix(key, "CODESAN_")
		if err := setEnvField(cfg, field, v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func setEnvField(cfg *Config, field, v string) error {
	switch field {
	case "PREFIX":
		return SetField(cfg, "prefix", v)
	case "FORMAT":
		return SetField(cfg, "format", v)
	case "SKIP":
		return SetField(cfg, "skip", v)
	case "THRESHOLD":
		return SetField(cfg, "threshold", v)
	case "JOBS":
		return SetField(cfg, "jobs", v)
	case "CACHE":
		return SetField(cfg, "cache.enabled", v)
	case "CACHE_DIR":
		return SetField(cfg, "cache.dir", v)
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, k, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "prefix":
		cfg.Prefix = value
	case "recursive":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("recursive must be a boolean: %w", err)
		}
		cfg.Recursive = b
	case "skip":
		cfg.Skip = SplitList(value)
	case "extensions":
		cfg.Extensions = SplitList(value)
	case "exclude":
		cfg.Exclude = SplitList(value)
	case "threshold":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("threshold must be an integer: %w", err)
		}
		cfg.Threshold = n
	case "format":
		cfg.Format = value
	case "jobs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("jobs must be an integer: %w", err)
		}
		cfg.Jobs = n
	case "matchTimeoutMs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("matchTimeoutMs must be an integer: %w", err)
		}
		cfg.MatchTimeoutMs = n
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Validate checks values that SetField accepts syntactically but a run
// would reject.
func Validate(cfg Config) error {
	switch cfg.Format {
	case "", "text", "json", "markdown", "md":
	default:
		return fmt.Errorf("format must be text, json or markdown, got %q", cfg.Format)
	}
	for _, name := range cfg.Skip {
		if _, err := redact.ParseCategory(name); err != nil {
			return fmt.Errorf("skip: %w", err)
		}
	}
	if cfg.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}
	if cfg.MatchTimeoutMs < 0 || cfg.Cache.TTLSeconds < 0 {
		return errors.New("matchTimeoutMs and cache.ttlSeconds must not be negative")
	}
	return nil
}

// SplitList splits a comma-separated value, trimming blanks.
func SplitList(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
