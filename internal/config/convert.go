package config

import (
	"github.com/danmuck/fieldwire/internal/logging"
)

// LoggingConfig converts the [log] section for logging.Setup.
func (l Log) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(l.Level); ok {
		cfg.Level = lvl
	}
	cfg.File = l.File
	cfg.Timestamp = l.Timestamp
	cfg.NoColor = l.NoColor
	if l.MaxSizeMB > 0 {
		cfg.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups > 0 {
		cfg.MaxBackups = l.MaxBackups
	}
	if l.MaxAgeDays > 0 {
		cfg.MaxAgeDays = l.MaxAgeDays
	}
	cfg.Compress = l.Compress
	return cfg
}
