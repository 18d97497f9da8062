package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Shows       []ShowConfig      `yaml:"shows"`
	Output      OutputConfig      `yaml:"output"`
	State       StateConfig       `yaml:"state"`
	Transcripts TranscriptsConfig `yaml:"transcripts"`
	Spotify     SpotifyConfig     `yaml:"spotify"`
	Timezone    string            `yaml:"timezone"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Server      ServerConfig      `yaml:"server"`
}

// ShowConfig identifies a show by catalog id or by its public URL.
type ShowConfig struct {
	ID   string `yaml:"id"`
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type StateConfig struct {
	Driver     string `yaml:"driver"`
	Path       string `yaml:"path"`
	JournalDir string `yaml:"journal_dir"`
}

type TranscriptsConfig struct {
	CacheDir string        `yaml:"cache_dir"`
	Command  CommandConfig `yaml:"command"`
}

// CommandConfig describes an optional external transcriber.
type CommandConfig struct {
	Binary  string        `yaml:"binary"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

type SpotifyConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Market       string        `yaml:"market"`
	PageSize     int           `yaml:"page_size"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML file at path, applies SPOTIFY_CLIENT_ID and
// SPOTIFY_CLIENT_SECRET from the environment (or a .env file) and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	for i, s := range c.Shows {
		if s.ID == "" && s.URL == "" {
			return fmt.Errorf("shows[%d]: either id or url is required", i)
		}
	}

	if c.Output.Format == "" {
		c.Output.Format = "markdown"
	}
	switch c.Output.Format {
	case "markdown", "docx", "html":
	default:
		return fmt.Errorf("output.format %q is not one of markdown, docx, html", c.Output.Format)
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}

	if c.State.Driver == "" {
		c.State.Driver = "json"
	}
	if c.State.Driver != "json" && c.State.Driver != "sqlite" {
		return fmt.Errorf("state.driver %q is not one of json, sqlite", c.State.Driver)
	}
	if c.State.Path == "" {
		if c.State.Driver == "sqlite" {
			c.State.Path = "data/state.sqlite"
		} else {
			c.State.Path = "data/state.json"
		}
	}
	if c.State.JournalDir == "" {
		c.State.JournalDir = filepath.Join(filepath.Dir(c.State.Path), "journal")
	}

	if c.Transcripts.CacheDir == "" {
		c.Transcripts.CacheDir = "data/transcripts"
	}
	if c.Transcripts.Command.Binary == "" && len(c.Transcripts.Command.Args) > 0 {
		return fmt.Errorf("transcripts.command.binary is required when args are set")
	}

	if c.Spotify.Market == "" {
		c.Spotify.Market = "US"
	}
	if c.Spotify.PageSize <= 0 {
		c.Spotify.PageSize = 50
	}
	if c.Spotify.Timeout <= 0 {
		c.Spotify.Timeout = 10 * time.Second
	}

	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}

	return nil
}

// Location returns the configured time zone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequireSpotify reports whether catalog credentials are present.
func (c *Config) RequireSpotify() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
	}
	return nil
}
