package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()

	config, err := LoadFrom(v)

	require.NoError(t, err)
	assert.Equal(t, contact.DefaultEndpoint, config.Contact.Endpoint)
	assert.Equal(t, DefaultIdleLabel, config.Contact.IdleLabel)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, DefaultThemeFile, config.Theme.File)
	assert.Equal(t, "", config.Gallery.File)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "localhost:8080", config.Server.Addr())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "custom values",
			setup: func(v *viper.Viper) {
				v.Set("contact.endpoint", "http://127.0.0.1:9999/hook")
				v.Set("contact.idle_label", "Say hello")
				v.Set("server.port", 3000)
				v.Set("server.allowed_origins", []string{"example.com"})
				v.Set("gallery.file", "projects.yml")
				v.Set("log.format", "json")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "http://127.0.0.1:9999/hook", c.Contact.Endpoint)
				assert.Equal(t, "Say hello", c.Contact.IdleLabel)
				assert.Equal(t, 3000, c.Server.Port)
				assert.Equal(t, []string{"example.com"}, c.Server.AllowedOrigins)
				assert.Equal(t, "projects.yml", c.Gallery.File)
				assert.Equal(t, "json", c.Log.Format)
			},
		},
		{
			name: "flat log-level flag",
			setup: func(v *viper.Viper) {
				v.Set("log-level", "debug")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "debug", c.Log.Level)
			},
		},
		{
			name:        "non http endpoint",
			setup:       func(v *viper.Viper) { v.Set("contact.endpoint", "ftp://example.com") },
			expectError: true,
		},
		{
			name:        "port out of range",
			setup:       func(v *viper.Viper) { v.Set("server.port", 70000) },
			expectError: true,
		},
		{
			name:        "host with shell characters",
			setup:       func(v *viper.Viper) { v.Set("server.host", "localhost;rm") },
			expectError: true,
		},
		{
			name:        "theme path traversal",
			setup:       func(v *viper.Viper) { v.Set("theme.file", "../../etc/theme.yml") },
			expectError: true,
		},
		{
			name:        "unknown log format",
			setup:       func(v *viper.Viper) { v.Set("log.format", "xml") },
			expectError: true,
		},
		{
			name:        "undecodable port",
			setup:       func(v *viper.Viper) { v.Set("server.port", "invalid_port") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			config, err := LoadFrom(v)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoadErrorIsConfigType(t *testing.T) {
	v := viper.New()
	v.Set("contact.endpoint", "not a url")

	_, err := LoadFrom(v)

	require.Error(t, err)
	assert.Equal(t, "config", folioerrors.GetErrorContext(err)["type"])
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".folio.yml")
	content := []byte(`contact:
  endpoint: https://example.com/contact
server:
  host: 0.0.0.0
  port: 9090
theme:
  file: prefs/theme.yml
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/contact", config.Contact.Endpoint)
	assert.Equal(t, "0.0.0.0:9090", config.Server.Addr())
	assert.Equal(t, "prefs/theme.yml", config.Theme.File)
}

func TestLoadUsesGlobalViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("server.port", 4321)

	config, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4321, config.Server.Port)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("FOLIO_CONTACT_ENDPOINT", "https://forms.example/submit")
	t.Setenv("FOLIO_SERVER_PORT", "9191")
	t.Setenv("FOLIO_LOG_FORMAT", "json")

	v := viper.New()
	require.NoError(t, BindEnv(v))

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example/submit", config.Contact.Endpoint)
	assert.Equal(t, 9191, config.Server.Port)
	assert.Equal(t, "json", config.Log.Format)
}

func TestRejectsNegativeContactRate(t *testing.T) {
	v := viper.New()
	v.Set("server.contact_rate_per_minute", -1)

	_, err := LoadFrom(v)
	require.Error(t, err)
}

func TestContactRate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(v *viper.Viper)
		want  int
	}{
		{name: "unset uses default", setup: func(*viper.Viper) {}, want: DefaultContactRate},
		{name: "explicit zero disables", setup: func(v *viper.Viper) { v.Set("server.contact_rate_per_minute", 0) }, want: 0},
		{name: "explicit value", setup: func(v *viper.Viper) { v.Set("server.contact_rate_per_minute", 3) }, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			config, err := LoadFrom(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, config.Server.ContactRatePerMinute)
		})
	}
}

func TestContactRateZeroFromEnv(t *testing.T) {
	t.Setenv("FOLIO_SERVER_CONTACT_RATE_PER_MINUTE", "0")
	v := viper.New()
	require.NoError(t, BindEnv(v))

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 0, config.Server.ContactRatePerMinute)
}
