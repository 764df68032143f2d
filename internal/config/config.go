package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port      int    `yaml:"port"`
		DataPath  string `yaml:"data_path"`
		UIEnabled bool   `yaml:"ui_enabled"`
		Debug     bool   `yaml:"debug"`
	} `yaml:"app"`

	Metadata struct {
		BaseURL  string `yaml:"base_url"`
		ImageURL string `yaml:"image_url"`
		Language string `yaml:"language"`
		Timeout  string `yaml:"timeout"`
		// Requests per second allowed towards the metadata API
		RateLimit float64 `yaml:"rate_limit"`
		TMDB      struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"tmdb"`
	} `yaml:"metadata"`

	Player struct {
		EmbedURL   string `yaml:"embed_url"`
		TrailerURL string `yaml:"trailer_url"`
	} `yaml:"player"`

	Search struct {
		Debounce       string `yaml:"debounce"`
		MinQueryLength int    `yaml:"min_query_length"`
	} `yaml:"search"`

	Sessions struct {
		IdleTimeout   string `yaml:"idle_timeout"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"sessions"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.App.Port = 8081
	cfg.App.DataPath = "./data"
	cfg.App.UIEnabled = true
	cfg.App.Debug = false

	cfg.Metadata.BaseURL = "https://api.themoviedb.org/3"
	cfg.Metadata.ImageURL = "https://image.tmdb.org/t/p/original"
	cfg.Metadata.Language = "en-US"
	cfg.Metadata.Timeout = "10s"
	cfg.Metadata.RateLimit = 20

	cfg.Player.EmbedURL = "https://vidsrc.to/embed"
	cfg.Player.TrailerURL = "https://www.youtube.com/embed"

	cfg.Search.Debounce = "500ms"
	cfg.Search.MinQueryLength = 2

	cfg.Sessions.IdleTimeout = "30m"
	cfg.Sessions.SweepInterval = "@every 1m"
}

func loadFromEnv(cfg *Config) {
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		cfg.Metadata.TMDB.APIKey = key
	}
	if port, err := strconv.Atoi(os.Getenv("MOVIEHOUSE_PORT")); err == nil && port > 0 {
		cfg.App.Port = port
	}
	if debug, err := strconv.ParseBool(os.Getenv("MOVIEHOUSE_DEBUG")); err == nil {
		cfg.App.Debug = debug
	}
}

// Duration parses a duration setting, falling back when it is empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
