package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Environment names accepted by APP_ENV / NODE_ENV.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Upstream UpstreamSettings `json:"upstream"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	StaticDir   string `json:"staticDir"` // SPA build served in production
}

// UpstreamSettings configures the catalog API the gateway forwards to.
type UpstreamSettings struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl"`
	Language       string `json:"language"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	MaxAttempts    int    `json:"maxAttempts"`
	DefaultRegion  string `json:"defaultRegion"` // watch region when the caller sends none
	TrailerSite    string `json:"trailerSite"`   // preferred video platform for trailer lookup
}

// LogConfig represents logging configuration
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// IsProduction reports whether verbose error detail must be hidden and
// static assets served.
func (s Settings) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.Server.Environment), EnvProduction)
}

func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 5000, Environment: EnvDevelopment, StaticDir: "client/build"},
		Upstream: UpstreamSettings{
			APIKey:         "",
			BaseURL:        "https://api.themoviedb.org/3",
			Language:       "en-US",
			TimeoutSeconds: 10,
			MaxAttempts:    3,
			DefaultRegion:  "US",
			TrailerSite:    "YouTube",
		},
		Log: LogConfig{
			File:       "",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
	fs   afero.Fs
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(configPath, afero.NewOsFs())
}

// NewManagerWithFs is NewManager over an arbitrary filesystem (tests use afero.NewMemMapFs).
func NewManagerWithFs(configPath string, fsys afero.Fs) *Manager {
	return &Manager{path: configPath, fs: fsys}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
// Zero values left in the file are filled from DefaultSettings.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, err
	}

	// Migrate the older "metadata" block (tmdbApiKey/language) into "upstream".
	if metaRaw, ok := raw["metadata"].(map[string]interface{}); ok {
		upstreamRaw, _ := raw["upstream"].(map[string]interface{})
		if upstreamRaw == nil {
			upstreamRaw = map[string]interface{}{}
		}
		if key, _ := metaRaw["tmdbApiKey"].(string); strings.TrimSpace(key) != "" {
			if existing, _ := upstreamRaw["apiKey"].(string); existing == "" {
				upstreamRaw["apiKey"] = key
			}
		}
		if lang, _ := metaRaw["language"].(string); strings.TrimSpace(lang) != "" {
			if existing, _ := upstreamRaw["language"].(string); existing == "" {
				upstreamRaw["language"] = lang
			}
		}
		raw["upstream"] = upstreamRaw
		delete(raw, "metadata")
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	if err := json.Unmarshal(normalized, &s); err != nil {
		return Settings{}, err
	}
	s.fillDefaults()
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.Server.Port <= 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Server.Environment) == "" {
		s.Server.Environment = d.Server.Environment
	}
	if strings.TrimSpace(s.Upstream.BaseURL) == "" {
		s.Upstream.BaseURL = d.Upstream.BaseURL
	}
	if s.Upstream.TimeoutSeconds <= 0 {
		s.Upstream.TimeoutSeconds = d.Upstream.TimeoutSeconds
	}
	if s.Upstream.MaxAttempts <= 0 {
		s.Upstream.MaxAttempts = d.Upstream.MaxAttempts
	}
	if strings.TrimSpace(s.Upstream.DefaultRegion) == "" {
		s.Upstream.DefaultRegion = d.Upstream.DefaultRegion
	}
	s.Upstream.APIKey = strings.TrimSpace(s.Upstream.APIKey)
}

// ApplyEnv overlays process environment on top of file settings. The
// environment always wins.
func ApplyEnv(s *Settings, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv("TMDB_API_KEY")); v != "" {
		s.Upstream.APIKey = v
	}
	if v := strings.TrimSpace(getenv("TMDB_LANGUAGE")); v != "" {
		s.Upstream.Language = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			s.Server.Port = port
		}
	}
	env := strings.TrimSpace(getenv("APP_ENV"))
	if env == "" {
		env = strings.TrimSpace(getenv("NODE_ENV"))
	}
	if env != "" {
		s.Server.Environment = strings.ToLower(env)
	}
	if v := strings.TrimSpace(getenv("REELIFY_STATIC_DIR")); v != "" {
		s.Server.StaticDir = v
	}
}
