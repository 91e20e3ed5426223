package commands

import (
	"github.com/Joseda-hg/codeplanner/internal/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
}

// DefaultConfigPath returns the config path under the user config dir, or a
// path relative to the working directory when that cannot be resolved.
func DefaultConfigPath() string {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "codeplanner.yaml"
	}
	return path
}
