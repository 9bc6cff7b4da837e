// Package config resolves the bot's settings from, in increasing order of
// precedence: built-in defaults, an optional YAML file, a .env file, the
// process environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/genniabot/gbot-core/rules"
)

var (
	ErrMissingServer = errors.New("server url is required (SERVER_URL or -s)")
	ErrMissingRoom   = errors.New("room id is required (ROOM_ID or -r)")
)

const DefaultName = "GenniaBot"

type Config struct {
	Server   string         `yaml:"server_url"`
	Room     string         `yaml:"room_id"`
	Name     string         `yaml:"bot_name"`
	LogLevel string         `yaml:"log_level"`
	Seed     int64          `yaml:"seed"` // 0 picks a time-based seed
	Doctrine rules.Doctrine `yaml:"doctrine"`
	Record   Record         `yaml:"record"`
}

// Record configures the optional game records. Empty paths disable them.
type Record struct {
	TurnLogDir string `yaml:"turn_log_dir"`
	IndexPath  string `yaml:"index_db"`
}

func Default() Config {
	return Config{
		Name:     DefaultName,
		LogLevel: "info",
		Doctrine: rules.DefaultDoctrine(),
	}
}

// LoadFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current value.
func LoadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SERVER_URL, ROOM_ID, BOT_NAME and LOG_LEVEL.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, dst := range map[string]*string{
		"SERVER_URL": &c.Server,
		"ROOM_ID":    &c.Room,
		"BOT_NAME":   &c.Name,
		"LOG_LEVEL":  &c.LogLevel,
	} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

// Parse resolves the full configuration for the given command line
// (without the program name).
func Parse(args []string, stderr io.Writer) (Config, error) {
	fset := flag.NewFlagSet("gbot", flag.ContinueOnError)
	fset.SetOutput(stderr)
	var (
		configPath = fset.String("config", "", "YAML config file")
		envPath    = fset.String("env", ".env", "dotenv file loaded into the environment if present")
		room       string
		name       string
		server     string
		logLevel   string
	)
	fset.StringVar(&room, "r", "", "room id to join")
	fset.StringVar(&room, "room", "", "room id to join")
	fset.StringVar(&name, "n", "", "bot name")
	fset.StringVar(&name, "name", "", "bot name")
	fset.StringVar(&server, "s", "", "server url to join")
	fset.StringVar(&server, "server", "", "server url to join")
	fset.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		if err := LoadFile(&cfg, *configPath); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", *envPath, err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r", "room":
			cfg.Room = room
		case "n", "name":
			cfg.Name = name
		case "s", "server":
			cfg.Server = server
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})

	cfg.Doctrine.Validate()
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return ErrMissingServer
	}
	if strings.TrimSpace(c.Room) == "" {
		return ErrMissingRoom
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level is the slog level named by LogLevel; unknown names mean info.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
