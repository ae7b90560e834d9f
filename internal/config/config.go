package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Layout    LayoutConfig    `yaml:"layout"`
	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	Trainer   TrainerConfig   `yaml:"trainer"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig guards the HTTP transport with a static bearer token. An
// empty token disables the check.
type AuthConfig struct {
	Token string `yaml:"token"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type LayoutConfig struct {
	Splits   []string `yaml:"splits"`
	VideoExt string   `yaml:"video_ext"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

// TrainerConfig names the retrain command; the project root is appended
// as its last argument.
type TrainerConfig struct {
	Command        []string `yaml:"command"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: ModeStdio,
		},
		DB: DBConfig{
			Path: "~/.clipstudio/registry.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Layout: LayoutConfig{
			Splits:   []string{"train", "valid"},
			VideoExt: ".mp4",
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
		},
		Trainer: TrainerConfig{
			TimeoutSeconds: 1800,
		},
	}
}

// Load reads configuration from the YAML file named by
// CLIPSTUDIO_CONFIG_PATH, if any, and environment variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CLIPSTUDIO_CONFIG_PATH"))
}

// LoadFrom reads configuration from an optional YAML file, then applies
// environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CLIPSTUDIO_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CLIPSTUDIO_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CLIPSTUDIO_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("CLIPSTUDIO_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if token := os.Getenv("CLIPSTUDIO_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if dbPath := os.Getenv("CLIPSTUDIO_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CLIPSTUDIO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("CLIPSTUDIO_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if ffmpegPath := os.Getenv("CLIPSTUDIO_FFMPEG_PATH"); ffmpegPath != "" {
		cfg.FFmpeg.BinaryPath = ffmpegPath
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	switch c.Transport.Mode {
	case ModeStdio, ModeHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if len(c.Layout.Splits) == 0 {
		return fmt.Errorf("layout.splits must not be empty")
	}
	if c.Layout.VideoExt != "" && !strings.HasPrefix(c.Layout.VideoExt, ".") {
		c.Layout.VideoExt = "." + c.Layout.VideoExt
	}

	for _, p := range []*string{&c.DB.Path, &c.Log.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand path %q: %w", path, err)
	}
	return expanded, nil
}

func loadFromFile(path string, cfg *Config) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
