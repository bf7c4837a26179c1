package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStored(t *testing.T) {
	assert.Equal(t, Dark, FromStored("dark"))
	assert.Equal(t, Light, FromStored("light"))
	assert.Equal(t, Light, FromStored(""))
	assert.Equal(t, Light, FromStored("DARK"))
}

func TestModeHelpers(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggled())
	assert.Equal(t, Light, Dark.Toggled())
	assert.Equal(t, "dark-mode", Dark.BodyClass())
	assert.Equal(t, "", Light.BodyClass())
}

func TestModeAsFlag(t *testing.T) {
	var m Mode
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&m, "mode", "theme mode")

	require.NoError(t, fs.Parse([]string{"--mode", "Dark"}))
	assert.Equal(t, Dark, m)
	assert.Equal(t, "theme", m.Type())

	err := fs.Parse([]string{"--mode", "sepia"})
	assert.Error(t, err)

	var unset Mode
	assert.Equal(t, "light", unset.String())
}

func TestStoreMissingFileIsLight(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "theme.yml"))

	m, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, Light, m)
}

func TestStoreToggleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "theme.yml")
	s := NewStore(path)

	m, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Dark, m)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "theme: dark\n", string(data))

	loaded, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Dark, loaded)

	m, err = s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Light, m)
}

func TestStoreIgnoresGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	require.NoError(t, os.WriteFile(path, []byte(":::not yaml"), 0o644))

	m, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, Light, m)
}

func TestStoreSaveNormalizesUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	s := NewStore(path)

	require.NoError(t, s.Save(Mode("sepia")))

	m, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Light, m)
}

func TestWatchReportsExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	s := NewStore(path)
	require.NoError(t, s.Save(Light))

	changes := make(chan Mode, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := s.Watch(ctx, nil, func(m Mode) { changes <- m })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("theme: dark\n"), 0o644))

	select {
	case m := <-changes:
		assert.Equal(t, Dark, m)
	case <-time.After(2 * time.Second):
		t.Fatal("change not reported")
	}
}

func TestWatchReportsOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	s := NewStore(path)
	require.NoError(t, s.Save(Light))

	changes := make(chan Mode, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := s.Watch(ctx, nil, func(m Mode) { changes <- m })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, s.Save(Dark))

	select {
	case m := <-changes:
		assert.Equal(t, Dark, m)
	case <-time.After(2 * time.Second):
		t.Fatal("own save not reported")
	}
}
