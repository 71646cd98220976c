// Package config loads and validates the botvision configuration file.
//
// Every recognized option is a field of Config. Unknown keys are rejected
// when the file is decoded, so a typo fails before any screen is searched.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mj1618/botvision/internal/logger"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Config is the full option set. Durations are in milliseconds in the file.
type Config struct {
	ConfidenceThreshold float64  `yaml:"confidence_threshold" json:"confidence_threshold"`
	RetryAttempts       int      `yaml:"retry_attempts"       json:"retry_attempts"`
	AttemptDelay        int      `yaml:"attempt_delay"        json:"attempt_delay"`
	BacktrackStep       float64  `yaml:"backtrack_step"       json:"backtrack_step"`
	OverlayDuration     int      `yaml:"overlay_duration"     json:"overlay_duration"`
	OverlayColor        string   `yaml:"overlay_color"        json:"overlay_color"`
	OverlayWidth        int      `yaml:"overlay_width"        json:"overlay_width"`
	OverlayDir          string   `yaml:"overlay_dir"          json:"overlay_dir"`
	ShowOverlay         bool     `yaml:"show_overlay"         json:"show_overlay"`
	OCRLanguages        []string `yaml:"ocr_languages"        json:"ocr_languages"`
	LogLevel            string   `yaml:"log_level"            json:"log_level"`
	LogWriters          []string `yaml:"log_writers"          json:"log_writers"`
	LogFile             string   `yaml:"log_file"             json:"log_file"`
	VerifyClick         bool     `yaml:"verify_click"         json:"verify_click"`
	MatchScale          float64  `yaml:"match_scale"          json:"match_scale"`
}

// Error reports an invalid option value.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Msg)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ConfidenceThreshold: 0.8,
		RetryAttempts:       3,
		AttemptDelay:        500,
		BacktrackStep:       0.05,
		OverlayDuration:     1000,
		OverlayColor:        "red",
		OverlayWidth:        4,
		OCRLanguages:        []string{"eng"},
		LogLevel:            "INFO",
		LogWriters:          []string{"console"},
		MatchScale:          1,
	}
}

// Load reads path on top of the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &Error{Msg: err.Error()}
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// NormalizeConfidence rescales a percentage confidence (e.g. 85.0) to [0,1].
// Values already in [0,1] and values above 100 are returned unchanged.
func NormalizeConfidence(v float64) float64 {
	if v > 1 && v <= 100 {
		return v / 100
	}
	return v
}

func (c *Config) normalize() {
	c.ConfidenceThreshold = NormalizeConfidence(c.ConfidenceThreshold)
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
}

// Validate checks every option.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return &Error{Field: "confidence_threshold", Msg: fmt.Sprintf("%v is outside [0,1] (or 0-100 as a percentage)", c.ConfidenceThreshold)}
	}
	if c.RetryAttempts < 1 {
		return &Error{Field: "retry_attempts", Msg: fmt.Sprintf("must be at least 1, got %d", c.RetryAttempts)}
	}
	if c.AttemptDelay < 0 {
		return &Error{Field: "attempt_delay", Msg: "must not be negative"}
	}
	if c.BacktrackStep < 0 || c.BacktrackStep > 1 {
		return &Error{Field: "backtrack_step", Msg: fmt.Sprintf("%v is outside [0,1]", c.BacktrackStep)}
	}
	if c.MatchScale <= 0 || c.MatchScale > 1 {
		return &Error{Field: "match_scale", Msg: fmt.Sprintf("%v is outside (0,1]", c.MatchScale)}
	}
	if c.OverlayDuration < 0 {
		return &Error{Field: "overlay_duration", Msg: "must not be negative"}
	}
	if c.OverlayWidth < 1 {
		return &Error{Field: "overlay_width", Msg: fmt.Sprintf("must be at least 1 pixel, got %d", c.OverlayWidth)}
	}
	if _, err := ParseColor(c.OverlayColor); err != nil {
		return &Error{Field: "overlay_color", Msg: err.Error()}
	}
	if len(c.OCRLanguages) == 0 {
		return &Error{Field: "ocr_languages", Msg: "at least one language code is required"}
	}
	for _, lang := range c.OCRLanguages {
		if !validLanguageCode(lang) {
			return &Error{Field: "ocr_languages", Msg: fmt.Sprintf("invalid language code %q", lang)}
		}
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return &Error{Field: "log_level", Msg: err.Error()}
	}
	for _, w := range c.LogWriters {
		switch w {
		case "console":
		case "file":
			if c.LogFile == "" {
				return &Error{Field: "log_file", Msg: "required when log_writers includes file"}
			}
		default:
			return &Error{Field: "log_writers", Msg: fmt.Sprintf("unknown writer %q", w)}
		}
	}
	return nil
}

// AttemptDelayDuration is the default pause between detection attempts.
func (c Config) AttemptDelayDuration() time.Duration {
	return time.Duration(c.AttemptDelay) * time.Millisecond
}

// OverlayDurationValue is how long a marker stays visible.
func (c Config) OverlayDurationValue() time.Duration {
	return time.Duration(c.OverlayDuration) * time.Millisecond
}

// LoggerOptions converts the log settings for logger.New.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, Writers: c.LogWriters, File: c.LogFile}
}

// ParseColor accepts an SVG color name ("green") or "#rrggbb".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 255}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q (use a name like \"green\" or #rrggbb)", s)
}

// validLanguageCode accepts tesseract codes such as eng, por, chi_sim.
func validLanguageCode(s string) bool {
	if len(s) < 2 || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && r != '_' && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
