package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Prefix != "sanitized_" {
		t.Errorf("Default prefix = %q, want %q", cfg.Prefix, "sanitized_")
	}
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.Threshold != 3 {
		t.Errorf("Default threshold = %d, want 3", cfg.Threshold)
	}
	if cfg.Recursive {
		t.Error("Default recursive should be false")
	}
	if cfg.Cache.Enabled {
		t.Error("Default cache should be disabled")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("CODESAN_PREFIX", "clean_")
	t.Setenv("CODESAN_FORMAT", "json")
	t.Setenv("CODESAN_SKIP", "comments, urls")
	t.Setenv("CODESAN_THRESHOLD", "5")
	t.Setenv("CODESAN_JOBS", "2")
	t.Setenv("CODESAN_CACHE", "true")
	t.Setenv("CODESAN_CACHE_DIR", "/tmp/codesan-cache")

	cfg := Default()
	if err := mergeEnv(&cfg, nil); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}

	if cfg.Prefix != "clean_" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "clean_")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if len(cfg.Skip) != 2 || cfg.Skip[0] != "comments" || cfg.Skip[1] != "urls" {
		t.Errorf("Skip = %v, want [comments urls]", cfg.Skip)
	}
	if cfg.Threshold != 5 {
		t.Errorf("Threshold = %d, want 5", cfg.Threshold)
	}
	if cfg.Jobs != 2 {
		t.Errorf("Jobs = %d, want 2", cfg.Jobs)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true")
	}
	if cfg.Cache.Dir != "/tmp/codesan-cache" {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
}

func TestMergeEnv_Dotenv(t *testing.T) {
	t.Setenv("CODESAN_PREFIX", "from_env_")
	t.Setenv("CODESAN_FORMAT", "")

	cfg := Default()
	dotenv := map[string]string{
		"CODESAN_PREFIX": "from_dotenv_",
		"CODESAN_FORMAT": "markdown",
	}
	if err := mergeEnv(&cfg, dotenv); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Prefix != "from_env_" {
		t.Errorf("Prefix = %q, process env should win over .env", cfg.Prefix)
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want value from .env", cfg.Format)
	}
}

func TestMergeEnv_Invalid(t *testing.T) {
	t.Setenv("CODESAN_THRESHOLD", "lots")
	cfg := Default()
	if err := mergeEnv(&cfg, nil); err == nil {
		t.Error("Expected error for non-integer CODESAN_THRESHOLD")
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	overrides := map[string]string{
		"prefix":    "safe_",
		"format":    "json",
		"threshold": "-1",
		"recursive": "true",
		"exclude":   "vendor/*,*.pb.go",
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}

	if cfg.Prefix != "safe_" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "safe_")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Threshold != -1 {
		t.Errorf("Threshold = %d, want -1", cfg.Threshold)
	}
	if !cfg.Recursive {
		t.Error("Recursive should be true")
	}
	if len(cfg.Exclude) != 2 {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.Prefix != "sanitized_" {
		t.Errorf("Prefix changed with nil overrides")
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key   string
		value string
	}{
		{"prefix", "clean_"},
		{"recursive", "true"},
		{"skip", "emails,ips"},
		{"extensions", ".go,.py"},
		{"exclude", "vendor/*"},
		{"threshold", "4"},
		{"format", "markdown"},
		{"jobs", "8"},
		{"matchTimeoutMs", "250"},
		{"cache.enabled", "true"},
		{"cache.dir", "/tmp/c"},
		{"cache.ttlSeconds", "60"},
	}

	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}

	if cfg.Prefix != "clean_" {
		t.Errorf("Prefix = %q", cfg.Prefix)
	}
	if len(cfg.Skip) != 2 {
		t.Errorf("Skip = %v", cfg.Skip)
	}
	if cfg.Jobs != 8 || cfg.Threshold != 4 || cfg.MatchTimeoutMs != 250 {
		t.Errorf("ints = jobs %d threshold %d timeout %d", cfg.Jobs, cfg.Threshold, cfg.MatchTimeoutMs)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "/tmp/c" || cfg.Cache.TTLSeconds != 60 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidValues(t *testing.T) {
	cfg := Default()
	for _, key := range []string{"threshold", "jobs", "matchTimeoutMs", "cache.ttlSeconds", "recursive", "cache.enabled"} {
		if err := SetField(&cfg, key, "notavalue"); err == nil {
			t.Errorf("Expected error for invalid %s", key)
		}
	}
}

func TestMergeFile_BoolFields_EmptyFile(t *testing.T) {
	dst := Default()
	dst.Recursive = true
	mergeFile(&dst, Config{})

	if !dst.Recursive {
		t.Error("Recursive should remain true when file is empty")
	}
	if dst.Prefix != "sanitized_" || dst.Threshold != 3 {
		t.Errorf("empty file changed defaults: %+v", dst)
	}
}

func TestMergeFile_AllFields(t *testing.T) {
	dst := Default()
	src := Config{
		Prefix:         "clean_",
		Recursive:      true,
		Skip:           []string{"comments"},
		Extensions:     []string{".go"},
		Exclude:        []string{"test/**"},
		Threshold:      -1,
		Format:         "json",
		Jobs:           4,
		MatchTimeoutMs: 100,
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        "/tmp/cache",
			TTLSeconds: 3600,
		},
	}
	mergeFile(&dst, src)

	if dst.Prefix != "clean_" || !dst.Recursive || dst.Format != "json" {
		t.Errorf("scalar fields not merged: %+v", dst)
	}
	if len(dst.Skip) != 1 || len(dst.Extensions) != 1 || len(dst.Exclude) != 1 {
		t.Errorf("list fields not merged: %+v", dst)
	}
	if dst.Threshold != -1 || dst.Jobs != 4 || dst.MatchTimeoutMs != 100 {
		t.Errorf("int fields not merged: %+v", dst)
	}
	if !dst.Cache.Enabled || dst.Cache.Dir != "/tmp/cache" || dst.Cache.TTLSeconds != 3600 {
		t.Errorf("Cache = %+v", dst.Cache)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	yml := "prefix: clean_\nskip:\n  - comments\n  - urls\nthreshold: 4\ncache:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectFile(dir)
	if err != nil {
		t.Fatalf("LoadProjectFile error: %v", err)
	}
	if cfg.Prefix != "clean_" || cfg.Threshold != 4 || !cfg.Cache.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Skip) != 2 || cfg.Skip[1] != "urls" {
		t.Errorf("Skip = %v", cfg.Skip)
	}
}

func TestLoadProjectFile_Missing(t *testing.T) {
	cfg, err := LoadProjectFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProjectFile error: %v", err)
	}
	if cfg.Prefix != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Prefix = "roundtrip_"
	cfg.Skip = []string{"ips"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got.Prefix != "roundtrip_" || len(got.Skip) != 1 {
		t.Errorf("LoadFile = %+v", got)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)

	user := Default()
	user.Prefix = "user_"
	user.Format = "json"
	user.Jobs = 3
	if err := Save(user); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ProjectFile, []byte("prefix: project_\nformat: markdown\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(".env", []byte("CODESAN_FORMAT=text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODESAN_FORMAT", "")

	cfg, err := Load(map[string]string{"prefix": "flag_"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Prefix != "flag_" {
		t.Errorf("Prefix = %q, flags should win", cfg.Prefix)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, .env should beat project file", cfg.Format)
	}
	if cfg.Jobs != 3 {
		t.Errorf("Jobs = %d, user file value should survive", cfg.Jobs)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "codesan") {
		t.Errorf("ConfigDir = %q", dir)
	}
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("ConfigPath = %q", path)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"markdown alias", func(c *Config) { c.Format = "md" }, false},
		{"kebab category", func(c *Config) { c.Skip = []string{"db-strings"} }, false},
		{"bad format", func(c *Config) { c.Format = "sarif" }, true},
		{"unknown category", func(c *Config) { c.Skip = []string{"phones"} }, true},
		{"empty prefix", func(c *Config) { c.Prefix = "" }, true},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveProjectFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Skip = []string{"comments"}
	if err := SaveProjectFile(dir, cfg); err != nil {
		t.Fatalf("SaveProjectFile error: %v", err)
	}
	got, err := LoadProjectFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Prefix != cfg.Prefix || len(got.Skip) != 1 || got.Skip[0] != "comments" {
		t.Errorf("LoadProjectFile = %+v", got)
	}
}

func TestSources(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, k := range envVars {
		t.Setenv(k, "")
	}
	t.Setenv("CODESAN_JOBS", "2")
	if err := os.WriteFile(ProjectFile, []byte("prefix: p_\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(".env", []byte("CODESAN_FORMAT=json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	srcs, err := Sources()
	if err != nil {
		t.Fatalf("Sources error: %v", err)
	}
	byName := make(map[string]Source, len(srcs))
	for _, s := range srcs {
		byName[s.Name] = s
	}
	if byName["user"].Found {
		t.Error("user config should not exist yet")
	}
	if !byName["project"].Found {
		t.Error("project file should be found")
	}
	if d := byName["dotenv"]; !d.Found || len(d.Keys) != 1 || d.Keys[0] != "CODESAN_FORMAT" {
		t.Errorf("dotenv source = %+v", d)
	}
	if e := byName["env"]; !e.Found || len(e.Keys) != 1 || e.Keys[0] != "CODESAN_JOBS" {
		t.Errorf("env source = %+v", e)
	}
	if srcs[0].Name != "defaults" || srcs[len(srcs)-1].Name != "env" {
		t.Errorf("sources not in merge order: %+v", srcs)
	}
}
