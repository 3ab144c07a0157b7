package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "FACECAM_"
	envConfig  = "FACECAM_CONFIG"
	maxQuality = 100
)

// LoadOption tweaks Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile loads the given YAML file instead of FACECAM_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or FACECAM_CONFIG
//  3. env (prefix FACECAM_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{path: os.Getenv(envConfig)}
	for _, opt := range opts {
		opt(o)
	}

	base := New()
	k := koanf.New(".")

	if o.path != "" {
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, o.path, err)
		}
	}

	// FACECAM_SERVER_URL -> server_url; underscores are kept to match the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config path itself is not a field.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if c.ServerURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server_url must be an absolute URL", ErrInvalidConfig)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("%w: camera_width and camera_height must be positive", ErrInvalidConfig)
	}
	if c.IntervalMS < 0 {
		return fmt.Errorf("%w: interval_ms must not be negative", ErrInvalidConfig)
	}
	if c.RefreshHz <= 0 {
		return fmt.Errorf("%w: refresh_hz must be positive", ErrInvalidConfig)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > maxQuality {
		return fmt.Errorf("%w: jpeg_quality must be within 1..100", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	}
	switch c.Locale {
	case "en", "pt":
	default:
		return fmt.Errorf("%w: unknown locale %q", ErrInvalidConfig, c.Locale)
	}
	switch c.LabelFormat {
	case LabelWithConfidence, LabelNameOnly:
	default:
		return fmt.Errorf("%w: unknown label_format %q", ErrInvalidConfig, c.LabelFormat)
	}
	switch c.MirrorMode {
	case MirrorReflect, MirrorPassThrough:
	default:
		return fmt.Errorf("%w: unknown mirror_mode %q", ErrInvalidConfig, c.MirrorMode)
	}
	return nil
}
