package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogLevel     = "FIELDWIRE_LOG_LEVEL"
	EnvLogTimestamp = "FIELDWIRE_LOG_TIMESTAMP"
	EnvLogNoColor   = "FIELDWIRE_LOG_NOCOLOR"
	EnvLogFile      = "FIELDWIRE_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects level, console formatting and an optional rotating log file.
type Config struct {
	Level      zerolog.Level
	Timestamp  bool
	NoColor    bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the profile defaults once per process.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		Setup(DefaultConfig(profile))
	})
}

// Setup applies env overrides to cfg and installs it as the global logger.
// Unlike Configure it may be called again, e.g. after a config file loads.
func Setup(cfg Config) zerolog.Logger {
	ApplyEnvOverrides(&cfg)
	logger := New(cfg)
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = logger
	return logger
}

func DefaultConfig(profile Profile) Config {
	cfg := Config{
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
		cfg.NoColor = true
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// New builds a logger from cfg without touching global state.
func New(cfg Config) zerolog.Logger {
	ctx := zerolog.New(writer(cfg)).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func writer(cfg Config) io.Writer {
	if strings.TrimSpace(cfg.File) != "" {
		return &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	out := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: cfg.NoColor,
	}
	if cfg.Timestamp {
		out.TimeFormat = time.RFC3339
	} else {
		out.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return out
}

func ApplyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.File = v
	}
}

// ParseLevel maps a level name to a zerolog level. The bool is false for
// empty or unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
