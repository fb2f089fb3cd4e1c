package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultAPIBaseURL      = "http://127.0.0.1:8080"
	defaultAPITimeout      = 10 * time.Second
	defaultLat             = 51.505
	defaultLng             = -0.09
	defaultZoom            = 13
	defaultTileLayer       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultAttribution     = "© OpenStreetMap contributors"
	defaultLongNoteLines   = 3
	defaultLongNoteChars   = 200
	defaultMessageDuration = 3 * time.Second
	defaultMaxReplyIndent  = 3
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Map     MapConfig     `toml:"map"`
	Note    NoteConfig    `toml:"note"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type MapConfig struct {
	DefaultLat  float64 `toml:"default_lat"`
	DefaultLng  float64 `toml:"default_lng"`
	DefaultZoom int     `toml:"default_zoom"`
	TileLayer   string  `toml:"tile_layer"`
	Attribution string  `toml:"attribution"`
}

type NoteConfig struct {
	LongNoteLines int `toml:"long_note_lines"`
	LongNoteChars int `toml:"long_note_chars"`
}

type UIConfig struct {
	MessageDuration string `toml:"message_duration"`
	MaxReplyIndent  int    `toml:"max_reply_indent"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: defaultAPIBaseURL,
			Timeout: defaultAPITimeout.String(),
		},
		Map: MapConfig{
			DefaultLat:  defaultLat,
			DefaultLng:  defaultLng,
			DefaultZoom: defaultZoom,
			TileLayer:   defaultTileLayer,
			Attribution: defaultAttribution,
		},
		Note: NoteConfig{
			LongNoteLines: defaultLongNoteLines,
			LongNoteChars: defaultLongNoteChars,
		},
		UI: UIConfig{
			MessageDuration: defaultMessageDuration.String(),
			MaxReplyIndent:  defaultMaxReplyIndent,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) != "" {
		u, err := url.Parse(c.APIBaseURL())
		if err != nil {
			return errors.New("api.base_url: " + err.Error())
		}
		if u.Host == "" {
			return errors.New("api.base_url: host is required")
		}
	}
	if timeout := strings.TrimSpace(c.API.Timeout); timeout != "" {
		if _, err := time.ParseDuration(timeout); err != nil {
			return errors.New("api.timeout: " + err.Error())
		}
	}
	return nil
}

func (c Config) APIBaseURL() string {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return defaultAPIBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/")
}

func (c Config) APITimeout() time.Duration {
	return parseDurationOr(c.API.Timeout, defaultAPITimeout)
}

func (c Config) MessageDuration() time.Duration {
	return parseDurationOr(c.UI.MessageDuration, defaultMessageDuration)
}

func (c Config) MaxReplyIndent() int {
	if c.UI.MaxReplyIndent <= 0 {
		return defaultMaxReplyIndent
	}
	return c.UI.MaxReplyIndent
}

func (c Config) DefaultZoom() int {
	if c.Map.DefaultZoom <= 0 {
		return defaultZoom
	}
	return c.Map.DefaultZoom
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

// IsLongNote reports whether text should be collapsed in previews.
func (c NoteConfig) IsLongNote(text string) bool {
	lines := c.LongNoteLines
	if lines <= 0 {
		lines = defaultLongNoteLines
	}
	chars := c.LongNoteChars
	if chars <= 0 {
		chars = defaultLongNoteChars
	}
	return len(strings.Split(text, "\n")) > lines || len([]rune(text)) > chars
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
