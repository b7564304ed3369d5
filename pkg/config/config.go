package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "portfolio.yaml"

// EnvPrefix marks environment overrides. A double underscore separates nested keys,
// so PORTFOLIO_PREVIEW__ADDR sets preview.addr.
const EnvPrefix = "PORTFOLIO_"

// Config represents the application configuration.
type Config struct {
	DataSource   string         `yaml:"data_source" koanf:"data_source"`
	TemplatePath string         `yaml:"template_path" koanf:"template_path"`
	OutputDir    string         `yaml:"output_dir" koanf:"output_dir"`
	RichText     string         `yaml:"rich_text" koanf:"rich_text"`
	AssetRoot    string         `yaml:"asset_root" koanf:"asset_root"`
	Assets       []string       `yaml:"assets" koanf:"assets"`
	ContactQR    string         `yaml:"contact_qr,omitempty" koanf:"contact_qr"`
	FetchTimeout time.Duration  `yaml:"fetch_timeout" koanf:"fetch_timeout"`
	Carousel     CarouselConfig `yaml:"carousel" koanf:"carousel"`
	Preview      PreviewConfig  `yaml:"preview" koanf:"preview"`
	Log          LogConfig      `yaml:"log" koanf:"log"`
}

// CarouselConfig holds project slider settings.
type CarouselConfig struct {
	Interval time.Duration `yaml:"interval" koanf:"interval"`
}

// PreviewConfig holds live preview server settings.
type PreviewConfig struct {
	Addr            string `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() (cfg Config) {
	cfg = Config{
		DataSource:   "site/data.json",
		TemplatePath: "site/index.html",
		OutputDir:    "./public",
		RichText:     "html",
		AssetRoot:    "site",
		Assets:       []string{"css/**", "js/**", "images/**", "assets/**"},
		FetchTimeout: 30 * time.Second,
		Carousel: CarouselConfig{
			Interval: 4 * time.Second,
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
	return cfg
}

// Load reads configuration from file with environment variable overrides.
// A missing default file is not an error; a missing explicit file is.
func Load(configPath string) (cfg Config, err error) {
	cfg = DefaultConfig()
	k := koanf.New(".")

	err = k.Load(defaultsProvider{}, yaml.Parser())
	if err != nil {
		err = errors.Wrap(err, "failed to load config defaults")
		return cfg, err
	}

	path := configPath
	if path == "" {
		path = DefaultFile
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		err = k.Load(file.Provider(path), yaml.Parser())
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'portfolio init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to access config file: %s", path)
		return cfg, err
	}

	err = k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		err = errors.Wrap(err, "failed to load environment overrides")
		return cfg, err
	}

	var decoded Config
	err = k.Unmarshal("", &decoded)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode config: %s", path)
		return cfg, err
	}
	cfg = decoded

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// defaultsProvider feeds DefaultConfig to koanf so file and env values merge
// over it key by key.
type defaultsProvider struct{}

func (defaultsProvider) ReadBytes() (data []byte, err error) {
	data, err = yamlv3.Marshal(DefaultConfig())
	return data, err
}

func (defaultsProvider) Read() (m map[string]interface{}, err error) {
	err = errors.New("defaults provider requires a parser")
	return m, err
}

// envKey maps PORTFOLIO_CAROUSEL__INTERVAL to carousel.interval.
func envKey(s string) (key string) {
	key = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	return key
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() (err error) {
	if c.TemplatePath == "" {
		err = errors.New("template_path is required in config")
		return err
	}

	if c.OutputDir == "" {
		err = errors.New("output_dir is required in config")
		return err
	}

	switch c.RichText {
	case "", "html", "markdown":
	default:
		err = errors.Errorf("invalid rich_text %q: must be 'html' or 'markdown'", c.RichText)
		return err
	}

	for _, pattern := range c.Assets {
		if !doublestar.ValidatePattern(pattern) {
			err = errors.Errorf("invalid asset pattern %q", pattern)
			return err
		}
	}

	if c.FetchTimeout < 0 {
		err = errors.New("fetch_timeout must be non-negative")
		return err
	}

	if c.Carousel.Interval <= 0 {
		err = errors.New("carousel.interval must be positive")
		return err
	}

	_, err = c.Log.level()
	if err != nil {
		return err
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		err = errors.Errorf("invalid log.format %q: must be 'text' or 'json'", c.Log.Format)
		return err
	}

	return err
}

func (l LogConfig) level() (level slog.Level, err error) {
	if l.Level == "" {
		return level, err
	}

	err = level.UnmarshalText([]byte(l.Level))
	if err != nil {
		err = errors.Errorf("invalid log.level %q: must be debug, info, warn or error", l.Level)
		return level, err
	}

	return level, err
}

// NewLogger builds a logger writing to w. Verbose forces debug level.
func (l LogConfig) NewLogger(w io.Writer, verbose bool) (logger *slog.Logger, err error) {
	var level slog.Level
	level, err = l.level()
	if err != nil {
		return logger, err
	}

	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(w, opts))
		return logger, err
	}

	logger = slog.New(slog.NewTextHandler(w, opts))
	return logger, err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (path string, err error) {
	path = configPath
	if path == "" {
		path = DefaultFile
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return path, err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return path, err
	}

	var data []byte
	data, err = yamlv3.Marshal(DefaultConfig())
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return path, err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return path, err
	}

	return path, err
}
