// Package config holds the settings shared by the tilepath commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	TilesBaseURL  string          `yaml:"tiles_base_url" validate:"omitempty,url"`
	Zoom          int             `yaml:"zoom" validate:"min=0,max=22"`
	Algorithm     string          `yaml:"algorithm" validate:"oneof=dijkstra astar nbastar"`
	Heuristic     string          `yaml:"heuristic" validate:"oneof=haversine euclidean zero"`
	Cost          string          `yaml:"cost" validate:"oneof=node distance unit"`
	NoCache       bool            `yaml:"no_cache"`
	TileIndex     TileIndexConfig `yaml:"tile_index"`
	HTTPTimeout   time.Duration   `yaml:"http_timeout" validate:"min=0"`
	GraphFile     string          `yaml:"graph_file"`
	LocationIndex string          `yaml:"location_index"`
	Server        ServerConfig    `yaml:"server"`
	LogLevel      string          `yaml:"log_level" validate:"oneof=debug info warn error"`
}

type TileIndexConfig struct {
	Enabled   bool `yaml:"enabled"`
	Threshold int  `yaml:"threshold" validate:"min=0"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	TilesDir string `yaml:"tiles_dir"`
}

func Default() Config {
	return Config{
		Zoom:        14,
		Algorithm:   "nbastar",
		Heuristic:   "haversine",
		Cost:        "node",
		HTTPTimeout: 30 * time.Second,
		Server: ServerConfig{
			Addr: ":8081",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file (if any) over the defaults, applies the TILEPATH_* environment
// variables and validates the result.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		if err := loadConfigFile(path, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func loadConfigFromEnv(config *Config) {
	if v := os.Getenv("TILEPATH_TILES_BASE_URL"); v != "" {
		config.TilesBaseURL = v
	}
	if v := os.Getenv("TILEPATH_ZOOM"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Zoom = i
		}
	}
	if v := os.Getenv("TILEPATH_ALGORITHM"); v != "" {
		config.Algorithm = v
	}
	if v := os.Getenv("TILEPATH_NO_CACHE"); v != "" {
		config.NoCache = v == "true" || v == "1"
	}
	if v := os.Getenv("TILEPATH_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.HTTPTimeout = d
		}
	}
	if v := os.Getenv("TILEPATH_SERVER_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("TILEPATH_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, len(fieldErrors))
			for i, fe := range fieldErrors {
				messages[i] = fmt.Sprintf("%v: failed on %v", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %v", ErrInvalid, strings.Join(messages, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.TileIndex.Enabled && c.TilesBaseURL == "" {
		return fmt.Errorf("%w: the tile index needs tiles_base_url", ErrInvalid)
	}
	return nil
}

// Level translates LogLevel for slog
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
