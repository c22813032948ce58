// Package config loads docstruct settings from defaults, TOML files and
// DOCSTRUCT_* environment variables, in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/tsawler/docstruct"
)

// Config is the complete configuration of the CLI and the HTTP server.
type Config struct {
	Parse   ParseConfig   `toml:"parse"`
	Output  OutputConfig  `toml:"output"`
	Batch   BatchConfig   `toml:"batch"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// ParseConfig maps onto docstruct.Options.
type ParseConfig struct {
	SkipTOC             bool `toml:"skip_toc"`
	TextPatternHeadings bool `toml:"text_pattern_headings"`
	MaxHeadingLevel     int  `toml:"max_heading_level" validate:"gte=0,lte=9"`
	HeaderFooterImages  bool `toml:"header_footer_images"`
	ImageDimensions     bool `toml:"image_dimensions"`
}

type OutputConfig struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format" validate:"oneof=json text markdown html"`
	Media  bool   `toml:"media"` // write images and previews under Dir/images
}

type BatchConfig struct {
	Workers int    `toml:"workers" validate:"gte=1,lte=64"`
	Timeout string `toml:"timeout" validate:"required"` // per file, e.g. "30s"
}

type ServerConfig struct {
	Addr           string `toml:"addr" validate:"required"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// NewDefaultConfig returns the configuration used when no file or
// environment variable sets a value.
func NewDefaultConfig() *Config {
	opts := docstruct.DefaultOptions()
	return &Config{
		Parse: ParseConfig{
			SkipTOC:             opts.SkipTableOfContents,
			TextPatternHeadings: opts.TextPatternHeadings,
			MaxHeadingLevel:     opts.MaxHeadingLevel,
			HeaderFooterImages:  opts.HeaderFooterImages,
			ImageDimensions:     opts.ImageDimensions,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Batch: BatchConfig{
			Workers: 4,
			Timeout: "30s",
		},
		Server: ServerConfig{
			Addr:           ":8090",
			MaxUploadBytes: 50 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFiles is Load followed by Validate.
func LoadFromFiles(paths ...string) (*Config, error) {
	config, err := Load(paths...)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads configuration with priority: defaults, then each file in
// order, then environment variables. Empty paths are ignored. The result is
// not validated, so callers that apply further overrides (command-line
// flags) call Validate once they are done.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies DOCSTRUCT_* environment variables.
func applyEnvOverrides(config *Config) {
	config.Parse.SkipTOC = envBool("DOCSTRUCT_PARSE_SKIP_TOC", config.Parse.SkipTOC)
	config.Parse.TextPatternHeadings = envBool("DOCSTRUCT_PARSE_TEXT_PATTERN_HEADINGS", config.Parse.TextPatternHeadings)
	config.Parse.MaxHeadingLevel = envInt("DOCSTRUCT_PARSE_MAX_HEADING_LEVEL", config.Parse.MaxHeadingLevel)
	config.Parse.HeaderFooterImages = envBool("DOCSTRUCT_PARSE_HEADER_FOOTER_IMAGES", config.Parse.HeaderFooterImages)
	config.Parse.ImageDimensions = envBool("DOCSTRUCT_PARSE_IMAGE_DIMENSIONS", config.Parse.ImageDimensions)

	config.Output.Dir = envOr("DOCSTRUCT_OUTPUT_DIR", config.Output.Dir)
	config.Output.Format = envOr("DOCSTRUCT_OUTPUT_FORMAT", config.Output.Format)
	config.Output.Media = envBool("DOCSTRUCT_OUTPUT_MEDIA", config.Output.Media)

	config.Batch.Workers = envInt("DOCSTRUCT_BATCH_WORKERS", config.Batch.Workers)
	config.Batch.Timeout = envOr("DOCSTRUCT_BATCH_TIMEOUT", config.Batch.Timeout)

	config.Server.Addr = envOr("DOCSTRUCT_SERVER_ADDR", config.Server.Addr)
	config.Server.MaxUploadBytes = envInt64("DOCSTRUCT_SERVER_MAX_UPLOAD_BYTES", config.Server.MaxUploadBytes)

	config.Logging.Level = envOr("DOCSTRUCT_LOG_LEVEL", config.Logging.Level)
	config.Logging.Format = envOr("DOCSTRUCT_LOG_FORMAT", config.Logging.Format)
}

// Validate checks field constraints and that the batch timeout parses.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if d, err := time.ParseDuration(c.Batch.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid configuration: batch timeout %q is not a positive duration", c.Batch.Timeout)
	}
	return nil
}

// Timeout returns the per-file parse budget.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.Batch.Timeout)
	return d
}

// Options converts the [parse] section to parser options.
func (c *Config) Options() docstruct.Options {
	return docstruct.Options{
		SkipTableOfContents: c.Parse.SkipTOC,
		TextPatternHeadings: c.Parse.TextPatternHeadings,
		HeaderFooterImages:  c.Parse.HeaderFooterImages,
		ImageDimensions:     c.Parse.ImageDimensions,
		MaxHeadingLevel:     c.Parse.MaxHeadingLevel,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
