// Package config loads analysis settings from TOML. Every key is optional;
// missing keys keep their Default value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/dimdasci/pdfs-api/layers"
	"github.com/dimdasci/pdfs-api/render"
)

// Config holds every tunable of a processing run
type Config struct {
	ZeroAreaEpsilon float64 `toml:"zero_area_epsilon"`

	RepeatedMinPageFraction float64 `toml:"repeated_pattern_min_page_fraction"`
	RepeatedTolerance       float64 `toml:"repeated_pattern_position_tolerance"`
	RepeatedUseContent      bool    `toml:"repeated_pattern_use_content"`

	BucketPolicy string `toml:"z_bucket_policy"`
	BucketWidth  int    `toml:"z_bucket_width"`

	MaxPages         int  `toml:"max_pages"`
	StrictValidation bool `toml:"strict_validation"`

	RenderScale  float64 `toml:"render_scale"`
	RasterFormat string  `toml:"raster_format"`
	Workers      int     `toml:"workers"`

	OCR         bool   `toml:"ocr"`
	OCRLanguage string `toml:"ocr_language"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		ZeroAreaEpsilon:         0.0001,
		RepeatedMinPageFraction: 0.5,
		RepeatedTolerance:       2.0,
		RepeatedUseContent:      true,
		BucketPolicy:            "per-type-run",
		BucketWidth:             layers.DefaultWidth,
		MaxPages:                500,
		RenderScale:             1.0,
		RasterFormat:            "png",
		OCRLanguage:             "eng",
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

// Parse reads TOML over the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a TOML file. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Save writes cfg as TOML, creating the directory if needed
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error
	if c.ZeroAreaEpsilon < 0 {
		errs = append(errs, errors.New("zero_area_epsilon must not be negative"))
	}
	if c.RepeatedMinPageFraction < 0 || c.RepeatedMinPageFraction > 1 {
		errs = append(errs, errors.New("repeated_pattern_min_page_fraction must be within [0, 1]"))
	}
	if c.RepeatedTolerance < 0 {
		errs = append(errs, errors.New("repeated_pattern_position_tolerance must not be negative"))
	}
	if _, err := layers.ParseKind(c.BucketPolicy); err != nil {
		errs = append(errs, fmt.Errorf("z_bucket_policy: %w", err))
	}
	if c.BucketWidth <= 0 {
		errs = append(errs, errors.New("z_bucket_width must be positive"))
	}
	if c.MaxPages < 0 {
		errs = append(errs, errors.New("max_pages must not be negative"))
	}
	if c.RenderScale <= 0 {
		errs = append(errs, errors.New("render_scale must be positive"))
	}
	if _, err := render.ParseFormat(c.RasterFormat); err != nil {
		errs = append(errs, fmt.Errorf("raster_format: %w", err))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, errors.New("log_format must be text or json"))
	}
	return errors.Join(errs...)
}

// Policy returns the layer bucketing policy
func (c Config) Policy() layers.Policy {
	kind, _ := layers.ParseKind(c.BucketPolicy)
	return layers.Policy{Kind: kind, Width: c.BucketWidth}
}

// Format returns the raster format
func (c Config) Format() render.Format {
	f, _ := render.ParseFormat(c.RasterFormat)
	return f
}
