package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// Enumeration of log levels.
const (
	LogLevelSilent  = iota // No console output beyond the error lines.
	LogLevelError          // Error lines and fatal error messages.
	LogLevelVerbose        // Errors, internal diagnostics, and status messages.
)

// configFileName is the optional project manifest looked up next to the
// source file.
const configFileName = "lune-mod.toml"

// Config is the compiler configuration, optionally overridden by a project
// manifest.
type Config struct {
	Name     string `toml:"name"`
	ASTOut   string `toml:"ast-out"`
	IROut    string `toml:"ir-out"`
	LogLevel string `toml:"loglevel"`
}

// LoadConfig returns the configuration for a compile of the given source
// file: the defaults, overridden by a manifest in the source file's directory
// if one exists.  A malformed manifest is an error.
func LoadConfig(srcPath string) (*Config, error) {
	config := &Config{
		ASTOut:   "a.txt",
		IROut:    "a.ll",
		LogLevel: "verbose",
	}

	manifestPath := filepath.Join(filepath.Dir(srcPath), configFileName)
	buff, err := ioutil.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(buff, config); err != nil {
		return nil, err
	}

	return config, nil
}

// logLevel converts the configured log level name to its enumerated value.
// Unknown names mean verbose.
func (c *Config) logLevel() int {
	switch c.LogLevel {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	}

	return LogLevelVerbose
}
