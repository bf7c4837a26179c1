// Package config provides configuration management for folio using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from .folio.yml, an optional .env file, FOLIO_ environment
// variables and flags bound by the CLI. Load applies defaults and validates
// the contact endpoint, server address and local file paths.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/validation"
)

type Config struct {
	Contact ContactConfig `mapstructure:"contact" yaml:"contact"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Theme   ThemeConfig   `mapstructure:"theme" yaml:"theme"`
	Gallery GalleryConfig `mapstructure:"gallery" yaml:"gallery"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ContactConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	IdleLabel string `mapstructure:"idle_label" yaml:"idle_label"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir" yaml:"static_dir"`

	// ContactRatePerMinute limits POST /contact per client address. Zero
	// disables the limit.
	ContactRatePerMinute int `mapstructure:"contact_rate_per_minute" yaml:"contact_rate_per_minute"`
}

type ThemeConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type GalleryConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 8080
	DefaultThemeFile   = ".folio/theme.yml"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultIdleLabel   = "Send Message"
	DefaultContactRate = 10
	DefaultConfigName  = ".folio"
	EnvPrefix          = "FOLIO"
)

// Load reads the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v, applies defaults and validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, folioerrors.WrapConfig(err, folioerrors.ErrCodeConfigInvalid, "decode configuration")
	}

	// The CLI binds some values under flat keys.
	if v.IsSet("log-level") && !v.IsSet("log.level") {
		config.Log.Level = v.GetString("log-level")
	}
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	applyDefaults(&config)
	// An explicit 0 turns the contact limiter off.
	if !v.IsSet("server.contact_rate_per_minute") {
		config.Server.ContactRatePerMinute = DefaultContactRate
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Contact.Endpoint == "" {
		config.Contact.Endpoint = contact.DefaultEndpoint
	}
	if config.Contact.IdleLabel == "" {
		config.Contact.IdleLabel = DefaultIdleLabel
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Theme.File == "" {
		config.Theme.File = DefaultThemeFile
	}
	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validation.ValidateEndpointURL(config.Contact.Endpoint); err != nil {
		return folioerrors.WrapConfig(err, folioerrors.ErrCodeConfigInvalid, "contact.endpoint")
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return folioerrors.WrapConfig(err, folioerrors.ErrCodeConfigInvalid, "server")
	}

	if err := validatePath(config.Theme.File); err != nil {
		return folioerrors.WrapConfig(err, folioerrors.ErrCodeInvalidPath, "theme.file")
	}

	if config.Server.StaticDir != "" {
		if err := validatePath(config.Server.StaticDir); err != nil {
			return folioerrors.WrapConfig(err, folioerrors.ErrCodeInvalidPath, "server.static_dir")
		}
	}

	if config.Gallery.File != "" {
		if err := validatePath(config.Gallery.File); err != nil {
			return folioerrors.WrapConfig(err, folioerrors.ErrCodeInvalidPath, "gallery.file")
		}
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return folioerrors.NewConfigError(folioerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("log.format %q must be text or json", config.Log.Format))
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.ContactRatePerMinute < 0 {
		return fmt.Errorf("contact_rate_per_minute %d must not be negative", config.ContactRatePerMinute)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

// validatePath validates a local file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Keys lists every configuration key. BindEnv uses it so that FOLIO_
// variables are seen by Unmarshal even when no file mentions the key.
var Keys = []string{
	"contact.endpoint",
	"contact.idle_label",
	"server.host",
	"server.port",
	"server.allowed_origins",
	"server.static_dir",
	"server.contact_rate_per_minute",
	"theme.file",
	"gallery.file",
	"log.level",
	"log.format",
}

// BindEnv configures v to read FOLIO_SECTION_KEY variables for all Keys.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return folioerrors.WrapConfig(err, folioerrors.ErrCodeConfigInvalid, "bind "+key)
		}
	}
	return nil
}
