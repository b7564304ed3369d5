package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	yamlv3 "gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "portfolio.yaml")

	content := `data_source: https://example.com/data.json
template_path: web/index.html
output_dir: ./dist
rich_text: markdown
assets:
  - "css/*.css"
carousel:
  interval: 2500ms
log:
  format: json
`
	err := os.WriteFile(configPath, []byte(content), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Test loading the config.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DataSource != "https://example.com/data.json" {
		t.Errorf("Expected data source from file, got %s", cfg.DataSource)
	}

	if cfg.RichText != "markdown" {
		t.Errorf("Expected rich_text markdown, got %s", cfg.RichText)
	}

	if cfg.Carousel.Interval != 2500*time.Millisecond {
		t.Errorf("Expected interval 2.5s, got %s", cfg.Carousel.Interval)
	}

	if len(cfg.Assets) != 1 || cfg.Assets[0] != "css/*.css" {
		t.Errorf("Expected asset list to be replaced, got %v", cfg.Assets)
	}

	// Keys absent from the file keep their defaults.
	if cfg.Preview.Addr != "127.0.0.1:8080" {
		t.Errorf("Expected default preview addr, got %s", cfg.Preview.Addr)
	}

	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected default fetch timeout, got %s", cfg.FetchTimeout)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Expected log info/json, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "portfolio.yaml")

	err := os.WriteFile(configPath, []byte("output_dir: ./dist\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("PORTFOLIO_OUTPUT_DIR", "./from-env")
	t.Setenv("PORTFOLIO_PREVIEW__ADDR", ":9090")
	t.Setenv("PORTFOLIO_CAROUSEL__INTERVAL", "1s")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.OutputDir != "./from-env" {
		t.Errorf("Expected env output dir, got %s", cfg.OutputDir)
	}

	if cfg.Preview.Addr != ":9090" {
		t.Errorf("Expected env preview addr, got %s", cfg.Preview.Addr)
	}

	if cfg.Carousel.Interval != time.Second {
		t.Errorf("Expected env interval, got %s", cfg.Carousel.Interval)
	}
}

func TestLoadDefaultFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err = os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults when %s is absent, got %v", DefaultFile, err)
	}

	if cfg.Carousel.Interval != 4*time.Second {
		t.Errorf("Expected default interval, got %s", cfg.Carousel.Interval)
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/portfolio.yaml")
	if err == nil {
		t.Error("Expected error loading nonexistent config, got nil")
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "portfolio.yaml")

	err := os.WriteFile(configPath, []byte("rich_text: rst\n"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	if !strings.Contains(err.Error(), "rich_text") {
		t.Errorf("Expected rich_text in error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "defaults",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing template path",
			mutate:    func(c *Config) { c.TemplatePath = "" },
			wantError: true,
		},
		{
			name:      "missing output dir",
			mutate:    func(c *Config) { c.OutputDir = "" },
			wantError: true,
		},
		{
			name:      "unknown rich text mode",
			mutate:    func(c *Config) { c.RichText = "rst" },
			wantError: true,
		},
		{
			name:      "bad asset pattern",
			mutate:    func(c *Config) { c.Assets = []string{"css/[*"} },
			wantError: true,
		},
		{
			name:      "negative fetch timeout",
			mutate:    func(c *Config) { c.FetchTimeout = -time.Second },
			wantError: true,
		},
		{
			name:      "zero carousel interval",
			mutate:    func(c *Config) { c.Carousel.Interval = 0 },
			wantError: true,
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Log.Level = "loud" },
			wantError: true,
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Log.Format = "xml" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("Expected JSON record, got %s", out)
	}

	buf.Reset()
	logger, err = LogConfig{Level: "error"}.NewLogger(&buf, true)
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	logger.Debug("verbose")
	if !strings.Contains(buf.String(), "msg=verbose") {
		t.Errorf("Verbose should force debug level, got %s", buf.String())
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "portfolio.yaml")

	path, err := InitConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	if path != configPath {
		t.Errorf("Expected path %s, got %s", configPath, path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var raw map[string]interface{}
	err = yamlv3.Unmarshal(data, &raw)
	if err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if raw["output_dir"] == nil {
		t.Error("Default output dir was not written")
	}

	// The written file must load back to the defaults.
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Carousel.Interval != DefaultConfig().Carousel.Interval {
		t.Errorf("Expected default interval, got %s", cfg.Carousel.Interval)
	}
}

func TestInitConfigAlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "portfolio.yaml")

	// Create file first.
	err := os.WriteFile(configPath, []byte("{}"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Try to init - should fail.
	_, err = InitConfig(configPath)
	if err == nil {
		t.Error("Expected error when config already exists, got nil")
	}
}
