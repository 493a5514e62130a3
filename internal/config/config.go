package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fieldwire/internal/logging"
	"github.com/danmuck/fieldwire/internal/protocol"
)

const (
	ModeTCP  = "tcp"
	ModeFile = "file"

	CompressionNone   = "none"
	CompressionSnappy = "snappy"
	CompressionZstd   = "zstd"
)

// Config is the fieldctl runtime configuration.
type Config struct {
	Sink    Sink
	Log     Log
	Metrics Metrics
	Schema  protocol.Schema
}

// Sink selects where serialized messages go.
type Sink struct {
	Mode        string
	Addr        string
	File        string
	Compression string
	Timeout     time.Duration
}

// Log mirrors logging.Config with config file friendly types.
type Log struct {
	Level      string
	File       string
	Timestamp  bool
	NoColor    bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Metrics controls the optional prometheus textfile dump.
type Metrics struct {
	Textfile string
}

type fileConfig struct {
	Sink struct {
		Mode        string `toml:"mode"`
		Addr        string `toml:"addr"`
		File        string `toml:"file"`
		Compression string `toml:"compression"`
		Timeout     string `toml:"timeout"`
	} `toml:"sink"`
	Log struct {
		Level      string `toml:"level"`
		File       string `toml:"file"`
		Timestamp  bool   `toml:"timestamp"`
		NoColor    bool   `toml:"no_color"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days"`
		Compress   bool   `toml:"compress"`
	} `toml:"log"`
	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
	Schema map[string]string `toml:"schema"`
}

func DefaultConfig() Config {
	base := logging.DefaultConfig(logging.ProfileRuntime)
	return Config{
		Sink: Sink{
			Mode:        ModeFile,
			Compression: CompressionNone,
			Timeout:     5 * time.Second,
		},
		Log: Log{
			Level:      base.Level.String(),
			Timestamp:  base.Timestamp,
			NoColor:    base.NoColor,
			MaxSizeMB:  base.MaxSizeMB,
			MaxBackups: base.MaxBackups,
			MaxAgeDays: base.MaxAgeDays,
		},
		Schema: protocol.Schema{},
	}
}

// Load reads a TOML config at path over DefaultConfig. Keys missing from
// the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("sink", "mode") {
		cfg.Sink.Mode = strings.ToLower(strings.TrimSpace(raw.Sink.Mode))
	}
	if meta.IsDefined("sink", "addr") {
		cfg.Sink.Addr = strings.TrimSpace(raw.Sink.Addr)
	}
	if meta.IsDefined("sink", "file") {
		cfg.Sink.File = strings.TrimSpace(raw.Sink.File)
	}
	if meta.IsDefined("sink", "compression") {
		cfg.Sink.Compression = strings.ToLower(strings.TrimSpace(raw.Sink.Compression))
	}
	if meta.IsDefined("sink", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Sink.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse sink.timeout: %w", err)
		}
		cfg.Sink.Timeout = d
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "file") {
		cfg.Log.File = strings.TrimSpace(raw.Log.File)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("log", "max_size_mb") {
		cfg.Log.MaxSizeMB = raw.Log.MaxSizeMB
	}
	if meta.IsDefined("log", "max_backups") {
		cfg.Log.MaxBackups = raw.Log.MaxBackups
	}
	if meta.IsDefined("log", "max_age_days") {
		cfg.Log.MaxAgeDays = raw.Log.MaxAgeDays
	}
	if meta.IsDefined("log", "compress") {
		cfg.Log.Compress = raw.Log.Compress
	}

	if meta.IsDefined("metrics", "textfile") {
		cfg.Metrics.Textfile = strings.TrimSpace(raw.Metrics.Textfile)
	}

	if meta.IsDefined("schema") {
		schema, err := protocol.ParseSchema(raw.Schema)
		if err != nil {
			return Config{}, fmt.Errorf("parse schema: %w", err)
		}
		cfg.Schema = schema
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that do not depend on the selected command.
func (c Config) Validate() error {
	switch c.Sink.Mode {
	case ModeTCP, ModeFile:
	default:
		return fmt.Errorf("sink mode %q: want %s or %s", c.Sink.Mode, ModeTCP, ModeFile)
	}
	if err := ValidateCompression(c.Sink.Compression); err != nil {
		return err
	}
	if c.Sink.Timeout < 0 {
		return fmt.Errorf("sink timeout must not be negative")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return c.Schema.Validate()
}

// ValidateTarget checks the sink has what its mode needs to open.
func (s Sink) ValidateTarget() error {
	switch s.Mode {
	case ModeTCP:
		if strings.TrimSpace(s.Addr) == "" {
			return fmt.Errorf("tcp sink requires addr")
		}
	case ModeFile:
		if strings.TrimSpace(s.File) == "" {
			return fmt.Errorf("file sink requires file")
		}
	default:
		return fmt.Errorf("sink mode %q: want %s or %s", s.Mode, ModeTCP, ModeFile)
	}
	return ValidateCompression(s.Compression)
}

func ValidateCompression(name string) error {
	switch name {
	case "", CompressionNone, CompressionSnappy, CompressionZstd:
		return nil
	default:
		return fmt.Errorf("unknown compression %q", name)
	}
}
