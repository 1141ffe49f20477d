// Package config loads qrpdf settings from defaults, an optional .env file,
// a YAML file and QRPDF_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "QRPDF_"

// Page holds the page layout settings.
type Page struct {
	Size        string  `yaml:"size" env:"SIZE"`
	Orientation string  `yaml:"orientation" env:"ORIENTATION"`
	MarginCM    float64 `yaml:"margin_cm" env:"MARGIN_CM"`
}

// Chrome holds settings for the headless Chrome renderer.
type Chrome struct {
	Path         string   `yaml:"path" env:"PATH"`
	NoSandbox    bool     `yaml:"no_sandbox" env:"NO_SANDBOX"`
	AutoDownload bool     `yaml:"auto_download" env:"AUTO_DOWNLOAD"`
	Timeout      Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Config holds all qrpdf settings.
type Config struct {
	OutputDir       string   `yaml:"output_dir" env:"OUTPUT_DIR"`
	Size            int      `yaml:"size" env:"SIZE"`
	Encoder         string   `yaml:"encoder" env:"ENCODER"`
	Renderer        string   `yaml:"renderer" env:"RENDERER"`
	ErrorCorrection string   `yaml:"error_correction" env:"ERROR_CORRECTION"`
	Margin          int      `yaml:"margin" env:"MARGIN"`
	Resolution      int      `yaml:"resolution" env:"RESOLUTION"`
	Verify          bool     `yaml:"verify" env:"VERIFY"`
	FileMode        FileMode `yaml:"file_mode" env:"FILE_MODE"`
	Page            Page     `yaml:"page" envPrefix:"PAGE_"`
	Chrome          Chrome   `yaml:"chrome" envPrefix:"CHROME_"`
	LogLevel        string   `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat       string   `yaml:"log_format" env:"LOG_FORMAT"`
}

// Duration is a time.Duration read from strings like "30s" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// FileMode is a permission mode written in octal, e.g. "0644" or "0o600".
type FileMode os.FileMode

// UnmarshalYAML implements yaml.Unmarshaler. The raw scalar is used so
// "0644" is read as octal whatever YAML would resolve it to.
func (m *FileMode) UnmarshalYAML(value *yaml.Node) error {
	return m.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler.
func (m FileMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (m *FileMode) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return fmt.Errorf("invalid file mode %q", text)
	}
	*m = FileMode(v)
	return nil
}

func (m FileMode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		OutputDir:       ".",
		Size:            200,
		Encoder:         qrpdf.EncoderZXing,
		Renderer:        qrpdf.RendererGoPDF,
		ErrorCorrection: "L",
		Margin:          1,
		Resolution:      qrpdf.DefaultResolution,
		FileMode:        0o644,
		Page: Page{
			Size:        "A4",
			Orientation: "portrait",
			MarginCM:    1.27,
		},
		Chrome: Chrome{
			Timeout: Duration{30 * time.Second},
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config from defaults, then a .env file in the working
// directory, then the YAML file at path, then QRPDF_* environment
// variables. A missing .env or config file is not an error; an empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", c.Size)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", c.Margin)
	}
	if c.Page.MarginCM < 0 {
		return fmt.Errorf("page margin must not be negative, got %v", c.Page.MarginCM)
	}
	if _, err := qrpdf.EncoderByName(c.Encoder); err != nil {
		return err
	}
	switch strings.ToLower(c.Renderer) {
	case qrpdf.RendererGoPDF, qrpdf.RendererChrome:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	if _, err := qrpdf.ParseECLevel(c.ErrorCorrection); err != nil {
		return err
	}
	if _, err := c.PageConfig(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// PageConfig converts the page settings.
func (c *Config) PageConfig() (qrpdf.PageConfig, error) {
	size, err := qrpdf.ParsePageSize(c.Page.Size)
	if err != nil {
		return qrpdf.PageConfig{}, err
	}
	orient, err := qrpdf.ParseOrientation(c.Page.Orientation)
	if err != nil {
		return qrpdf.PageConfig{}, err
	}
	return qrpdf.PageConfig{
		Size:        size,
		Orientation: orient,
		Margin:      qrpdf.UniformMargin(c.Page.MarginCM),
	}, nil
}
