package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Data    DataConfig        `yaml:"data"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Captcha CaptchaConfig     `yaml:"captcha"`
	Upload  UploadConfig      `yaml:"upload"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Captcha.Validate(); err != nil {
		return err
	}
	return c.Upload.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the data directories: notes, image attachments, and
// the log directory that also carries the login and share-registry
// files.
type DataConfig struct {
	NotesDir  string `yaml:"notes_dir"`
	ImagesDir string `yaml:"images_dir"`
	LogDir    string `yaml:"log_dir"`
}

// Validate validates the data directory configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesDir, validation.Required),
		validation.Field(&c.ImagesDir, validation.Required),
		validation.Field(&c.LogDir, validation.Required),
	)
}

// SQLiteConfig holds SQLite search index configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CaptchaConfig holds the challenge lifetime and how often expired
// challenges are swept.
type CaptchaConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Validate validates the captcha configuration.
func (c *CaptchaConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("captcha: ttl must be positive, got %s", c.TTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("captcha: sweep_interval must be positive, got %s", c.SweepInterval)
	}
	return nil
}

// UploadConfig caps the image upload endpoint. Note uploads are not
// subject to this limit.
type UploadConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// Validate validates the upload configuration.
func (c *UploadConfig) Validate() error {
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("upload: max_image_bytes must be positive, got %d", c.MaxImageBytes)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3001,
			},
		},
		Data: DataConfig{
			NotesDir:  "./file",
			ImagesDir: "./image",
			LogDir:    "./log",
		},
		SQLite: SQLiteConfig{
			Path: "./inkpot.db",
		},
		Captcha: CaptchaConfig{
			TTL:           5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Upload: UploadConfig{
			MaxImageBytes: 10 << 20, // 10 MiB
		},
	}
}
