package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadCreatesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mgr := NewManagerWithFs("cache/settings.json", fsys)

	s, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	exists, err := afero.Exists(fsys, "cache/settings.json")
	require.NoError(t, err)
	assert.True(t, exists, "defaults should be persisted")
}

func TestManager_LoadFillsMissingValues(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "settings.json", []byte(`{"server":{"port":0},"upstream":{"apiKey":"  abc  "}}`), 0o644))

	s, err := NewManagerWithFs("settings.json", fsys).Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, s.Server.Port)
	assert.Equal(t, "abc", s.Upstream.APIKey)
	assert.Equal(t, "https://api.themoviedb.org/3", s.Upstream.BaseURL)
	assert.Equal(t, 3, s.Upstream.MaxAttempts)
	assert.Equal(t, "US", s.Upstream.DefaultRegion)
}

func TestManager_LoadMigratesMetadataBlock(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "settings.json", []byte(`{"metadata":{"tmdbApiKey":"legacy","language":"fr-FR"}}`), 0o644))

	s, err := NewManagerWithFs("settings.json", fsys).Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", s.Upstream.APIKey)
	assert.Equal(t, "fr-FR", s.Upstream.Language)
}

func TestManager_SaveRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	mgr := NewManagerWithFs("nested/dir/settings.json", fsys)

	s := DefaultSettings()
	s.Server.Port = 8088
	s.Upstream.TrailerSite = "Vimeo"
	require.NoError(t, mgr.Save(s))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, 8088, loaded.Server.Port)
	assert.Equal(t, "Vimeo", loaded.Upstream.TrailerSite)

	exists, _ := afero.Exists(fsys, "nested/dir/settings.json.tmp")
	assert.False(t, exists, "temp file should be renamed away")
}

func TestManager_LoadRejectsEmptyPath(t *testing.T) {
	_, err := NewManagerWithFs("", afero.NewMemMapFs()).Load()
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TMDB_API_KEY": "from-env",
		"PORT":         "6001",
		"NODE_ENV":     "Production",
	}
	s := DefaultSettings()
	s.Upstream.APIKey = "from-file"

	ApplyEnv(&s, func(k string) string { return env[k] })

	assert.Equal(t, "from-env", s.Upstream.APIKey)
	assert.Equal(t, 6001, s.Server.Port)
	assert.Equal(t, "production", s.Server.Environment)
	assert.True(t, s.IsProduction())
}

func TestApplyEnv_AppEnvBeatsNodeEnv(t *testing.T) {
	env := map[string]string{"APP_ENV": "development", "NODE_ENV": "production", "PORT": "nope"}
	s := DefaultSettings()

	ApplyEnv(&s, func(k string) string { return env[k] })

	assert.False(t, s.IsProduction())
	assert.Equal(t, 5000, s.Server.Port, "invalid PORT is ignored")
}

func TestWatcher_ReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	mgr := NewManager(path)
	require.NoError(t, mgr.Save(DefaultSettings()))

	changes := make(chan Settings, 4)
	w, err := NewWatcher(mgr, 20*time.Millisecond, func(s Settings) { changes <- s })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	updated := DefaultSettings()
	updated.Upstream.APIKey = "rotated"
	require.NoError(t, mgr.Save(updated))

	select {
	case s := <-changes:
		assert.Equal(t, "rotated", s.Upstream.APIKey)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
