package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/WallySa7/alrawi/internal/mapper"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// VaultConfig holds the vault directory and the record folders inside it.
type VaultConfig struct {
	Path         string `yaml:"path"`
	VideosFolder string `yaml:"videos_folder"`
	BooksFolder  string `yaml:"books_folder"`
	CoversFolder string `yaml:"covers_folder"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.VideosFolder, validation.Required),
		validation.Field(&c.BooksFolder, validation.Required),
	)
}

// RecordFolders returns the folders holding record documents.
func (c *VaultConfig) RecordFolders() []string {
	return []string{c.VideosFolder, c.BooksFolder}
}

// LibraryConfig holds the status vocabularies and record defaults.
// Empty status lists accept any value.
type LibraryConfig struct {
	VideoStatuses []string       `yaml:"video_statuses"`
	BookStatuses  []string       `yaml:"book_statuses"`
	Defaults      DefaultsConfig `yaml:"defaults"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return nil
}

// MapperDefaults converts the configured defaults into the mapper's form.
func (c *LibraryConfig) MapperDefaults() mapper.Defaults {
	return mapper.Defaults{
		Presenter:   c.Defaults.Presenter,
		Author:      c.Defaults.Author,
		Language:    c.Defaults.Language,
		VideoStatus: c.Defaults.VideoStatus,
		BookStatus:  c.Defaults.BookStatus,
	}
}

// DefaultsConfig holds fallback values applied when a new or decoded record
// leaves a field empty.
type DefaultsConfig struct {
	Presenter   string `yaml:"presenter"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
	VideoStatus string `yaml:"video_status"`
	BookStatus  string `yaml:"book_status"`
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:         "./vault",
			VideosFolder: "Videos",
			BooksFolder:  "Books",
			CoversFolder: "covers",
		},
		Library: LibraryConfig{
			VideoStatuses: []string{"unwatched", "in-progress", "watched"},
			BookStatuses:  []string{"unread", "reading", "completed"},
			Defaults: DefaultsConfig{
				Presenter:   "Unknown",
				Author:      "Unknown",
				Language:    "Arabic",
				VideoStatus: "unwatched",
				BookStatus:  "unread",
			},
		},
		SQLite: SQLiteConfig{
			Path: "./alrawi.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
