package config

import (
	"fmt"
	"os"
)

// Template returns a commented sample config.
func Template() string {
	return fieldctlTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(fieldctlTemplate), 0o600)
}

const fieldctlTemplate = `# fieldctl configuration

[sink]
# tcp or file; the command line picks the mode, this is the default for decode.
mode = "file"
addr = "127.0.0.1:9000"
file = "message.bin"
# none, snappy or zstd (file sink only)
compression = "none"
timeout = "5s"

[log]
level = "info"
timestamp = true
no_color = false
# file = "fieldctl.log"
max_size_mb = 10
max_backups = 3
max_age_days = 28
compress = false

[metrics]
# textfile = "fieldctl.prom"

# Field number -> type tag, used by "fieldctl decode".
[schema]
0 = "N"
1 = "U"
2 = "S"
3 = "H"
4 = "D"
`
