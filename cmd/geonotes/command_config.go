package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"geonotes/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
	configFormatYAML = "yaml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path,omitempty" toml:"config_path,omitempty" yaml:"config_path,omitempty"`
	StatePath  string                 `json:"state_path,omitempty" toml:"state_path,omitempty" yaml:"state_path,omitempty"`
	API        effectiveAPIConfig     `json:"api" toml:"api" yaml:"api"`
	Map        effectiveMapConfig     `json:"map" toml:"map" yaml:"map"`
	Note       effectiveNoteConfig    `json:"note" toml:"note" yaml:"note"`
	UI         effectiveUIConfig      `json:"ui" toml:"ui" yaml:"ui"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging" yaml:"logging"`
}

type effectiveAPIConfig struct {
	BaseURL string `json:"base_url" toml:"base_url" yaml:"base_url"`
	Timeout string `json:"timeout" toml:"timeout" yaml:"timeout"`
}

type effectiveMapConfig struct {
	DefaultLat  float64 `json:"default_lat" toml:"default_lat" yaml:"default_lat"`
	DefaultLng  float64 `json:"default_lng" toml:"default_lng" yaml:"default_lng"`
	DefaultZoom int     `json:"default_zoom" toml:"default_zoom" yaml:"default_zoom"`
	TileLayer   string  `json:"tile_layer" toml:"tile_layer" yaml:"tile_layer"`
	Attribution string  `json:"attribution" toml:"attribution" yaml:"attribution"`
}

type effectiveNoteConfig struct {
	LongNoteLines int `json:"long_note_lines" toml:"long_note_lines" yaml:"long_note_lines"`
	LongNoteChars int `json:"long_note_chars" toml:"long_note_chars" yaml:"long_note_chars"`
}

type effectiveUIConfig struct {
	MessageDuration string `json:"message_duration" toml:"message_duration" yaml:"message_duration"`
	MaxReplyIndent  int    `json:"max_reply_indent" toml:"max_reply_indent" yaml:"max_reply_indent"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level" yaml:"level"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml|yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := c.buildOutput(*defaults)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func (c *ConfigCommand) buildOutput(defaults bool) (configOutput, error) {
	cfg := config.Default()
	out := configOutput{}
	if !defaults {
		path, err := config.ConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		if cfg, err = config.LoadFromPath(path); err != nil {
			return configOutput{}, err
		}
		out.ConfigPath = path
		if out.StatePath, err = config.StateDBPath(); err != nil {
			return configOutput{}, err
		}
	}
	return effectiveConfig(out, cfg), nil
}

// effectiveConfig reports the values the program will actually use, with
// blanks and out of range settings replaced by their defaults.
func effectiveConfig(out configOutput, cfg config.Config) configOutput {
	out.API = effectiveAPIConfig{
		BaseURL: cfg.APIBaseURL(),
		Timeout: cfg.APITimeout().String(),
	}
	out.Map = effectiveMapConfig{
		DefaultLat:  cfg.Map.DefaultLat,
		DefaultLng:  cfg.Map.DefaultLng,
		DefaultZoom: cfg.DefaultZoom(),
		TileLayer:   cfg.Map.TileLayer,
		Attribution: cfg.Map.Attribution,
	}
	out.Note = effectiveNoteConfig{
		LongNoteLines: cfg.Note.LongNoteLines,
		LongNoteChars: cfg.Note.LongNoteChars,
	}
	out.UI = effectiveUIConfig{
		MessageDuration: cfg.MessageDuration().String(),
		MaxReplyIndent:  cfg.MaxReplyIndent(),
	}
	out.Logging = effectiveLoggingConfig{
		Level: cfg.LogLevel(),
	}
	return out
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	case configFormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	case configFormatYAML, "yml":
		return configFormatYAML, nil
	default:
		return "", errors.New("invalid format: must be json, toml or yaml")
	}
}
