// Package config loads fuse settings from defaults, a YAML file, FUSE_
// environment variables and command line flags, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/vision"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Output formats.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatHTML    = "html"
	FormatOverlay = "overlay"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Config holds fuse configuration.
type Config struct {
	ImageDir        string    `mapstructure:"image_dir" yaml:"image_dir"`
	LayoutDir       string    `mapstructure:"layout_dir" yaml:"layout_dir"`
	ContentDir      string    `mapstructure:"content_dir" yaml:"content_dir"`
	OutputDir       string    `mapstructure:"output_dir" yaml:"output_dir"`
	LayoutSuffix    string    `mapstructure:"layout_suffix" yaml:"layout_suffix"`
	ContentSuffix   string    `mapstructure:"content_suffix" yaml:"content_suffix"`
	ImageExtensions []string  `mapstructure:"image_extensions" yaml:"image_extensions"`
	Workers         int       `mapstructure:"workers" yaml:"workers"`
	Fusion          FusionCfg `mapstructure:"fusion" yaml:"fusion"`
	Formats         []string  `mapstructure:"formats" yaml:"formats"`
	// Report names an XLSX summary written to the output directory. Empty
	// disables it.
	Report  string     `mapstructure:"report" yaml:"report"`
	Storage StorageCfg `mapstructure:"storage" yaml:"storage"`
	Cache   CacheCfg   `mapstructure:"cache" yaml:"cache"`
	Log     LogCfg     `mapstructure:"log" yaml:"log"`
}

// FusionCfg configures how tokens are read and matched.
type FusionCfg struct {
	Granularity      string  `mapstructure:"granularity" yaml:"granularity"` // "word", "symbol", "annotation"
	Tolerance        float64 `mapstructure:"tolerance" yaml:"tolerance"`
	FallbackLabel    string  `mapstructure:"fallback_label" yaml:"fallback_label"`
	NormalizeUnicode bool    `mapstructure:"normalize_unicode" yaml:"normalize_unicode"`
}

// StorageCfg selects where inputs are read and outputs written.
type StorageCfg struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "local" or "s3"
	Bucket  string `mapstructure:"bucket" yaml:"bucket"`
}

// CacheCfg configures the DynamoDB result cache.
type CacheCfg struct {
	// Table is the DynamoDB table name. Empty disables the cache.
	Table  string `mapstructure:"table" yaml:"table"`
	Create bool   `mapstructure:"create" yaml:"create"`
}

type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ImageDir:        "images",
		LayoutDir:       "layout",
		ContentDir:      "content",
		OutputDir:       "dataset",
		LayoutSuffix:    "_aws.json",
		ContentSuffix:   "_google.json",
		ImageExtensions: []string{".jpg", ".jpeg", ".png"},
		Workers:         runtime.NumCPU(),
		Fusion: FusionCfg{
			Granularity:      string(vision.GranularityWord),
			Tolerance:        fuse.DefaultTolerance,
			FallbackLabel:    fuse.DefaultFallbackLabel,
			NormalizeUnicode: true,
		},
		Formats: []string{FormatJSON},
		Storage: StorageCfg{Backend: BackendLocal},
		Log:     LogCfg{Level: "info", Format: "text"},
	}
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"image-dir":   "image_dir",
	"layout-dir":  "layout_dir",
	"content-dir": "content_dir",
	"output-dir":  "output_dir",
	"workers":     "workers",
	"granularity": "fusion.granularity",
	"tolerance":   "fusion.tolerance",
	"format":      "formats",
	"report":      "report",
	"backend":     "storage.backend",
	"bucket":      "storage.bucket",
	"cache-table": "cache.table",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("image_dir", d.ImageDir)
	v.SetDefault("layout_dir", d.LayoutDir)
	v.SetDefault("content_dir", d.ContentDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("layout_suffix", d.LayoutSuffix)
	v.SetDefault("content_suffix", d.ContentSuffix)
	v.SetDefault("image_extensions", d.ImageExtensions)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("fusion.granularity", d.Fusion.Granularity)
	v.SetDefault("fusion.tolerance", d.Fusion.Tolerance)
	v.SetDefault("fusion.fallback_label", d.Fusion.FallbackLabel)
	v.SetDefault("fusion.normalize_unicode", d.Fusion.NormalizeUnicode)
	v.SetDefault("formats", d.Formats)
	v.SetDefault("report", d.Report)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("cache.table", d.Cache.Table)
	v.SetDefault("cache.create", d.Cache.Create)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the configuration. With an empty cfgFile, fuse.yaml is looked
// up in the working directory and then $HOME/.fuse; a missing file is not an
// error. Flags in flags that appear in flagKeys override everything else
// when set. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variables with FUSE_ prefix, FUSE_FUSION_TOLERANCE for
	// fusion.tolerance
	v.SetEnvPrefix("FUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fuse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fuse")
	}
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	for key, value := range map[string]string{
		"image_dir":             c.ImageDir,
		"layout_dir":            c.LayoutDir,
		"content_dir":           c.ContentDir,
		"output_dir":            c.OutputDir,
		"layout_suffix":         c.LayoutSuffix,
		"content_suffix":        c.ContentSuffix,
		"fusion.fallback_label": c.Fusion.FallbackLabel,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalid, key)
		}
	}
	if c.LayoutSuffix == c.ContentSuffix {
		return fmt.Errorf("%w: layout_suffix and content_suffix are both %q", ErrInvalid, c.LayoutSuffix)
	}
	if len(c.ImageExtensions) == 0 {
		return fmt.Errorf("%w: image_extensions is empty", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if _, err := vision.ParseGranularity(c.Fusion.Granularity); err != nil {
		return fmt.Errorf("%w: fusion.granularity: %w", ErrInvalid, err)
	}
	if c.Fusion.Tolerance < 0 || math.IsNaN(c.Fusion.Tolerance) || math.IsInf(c.Fusion.Tolerance, 0) {
		return fmt.Errorf("%w: fusion.tolerance must be a non-negative number, got %v", ErrInvalid, c.Fusion.Tolerance)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("%w: formats is empty", ErrInvalid)
	}
	for _, f := range c.Formats {
		switch f {
		case FormatJSON, FormatCSV, FormatHTML, FormatOverlay:
		default:
			return fmt.Errorf("%w: unknown format %q", ErrInvalid, f)
		}
	}
	switch c.Storage.Backend {
	case BackendLocal:
	case BackendS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required for the s3 backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalid, c.Storage.Backend)
	}
	if c.Cache.Create && c.Cache.Table == "" {
		return fmt.Errorf("%w: cache.create needs cache.table", ErrInvalid)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// HasFormat reports whether format is one of the configured output formats.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// FuseOptions returns the fusion options.
func (c *Config) FuseOptions() fuse.Options {
	return fuse.Options{
		Tolerance:     c.Fusion.Tolerance,
		FallbackLabel: c.Fusion.FallbackLabel,
	}
}

// VisionOptions returns the options for reading content responses.
func (c *Config) VisionOptions() (vision.Options, error) {
	g, err := vision.ParseGranularity(c.Fusion.Granularity)
	if err != nil {
		return vision.Options{}, err
	}
	return vision.Options{Granularity: g, NormalizeUnicode: c.Fusion.NormalizeUnicode}, nil
}

func (l LogCfg) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return level, nil
}

// NewLogger returns a logger writing to w in the configured format and level.
func (l LogCfg) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# fuse configuration
# Every key can be overridden with a FUSE_ environment variable,
# e.g. FUSE_FUSION_TOLERANCE=0.03 or FUSE_STORAGE_BUCKET=my-pages

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
