package dump

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = "cdshare.toml"

// DebugEnvVar enables debug output when set to exactly "true".
const DebugEnvVar = "CDSHARE_DEBUG"

// Config holds the dump-time settings. The zero value is usable.
type Config struct {
	// Debug echoes the child command line and drains its output.
	Debug bool `toml:"debug"`

	// JavaHome overrides the installation directory used to locate the
	// launcher. Falls back to $JAVA_HOME.
	JavaHome string `toml:"java-home"`

	// ArchiveDir is where default-named archives are placed.
	ArchiveDir string `toml:"archive-dir"`

	// HistoryDB is the path of the dump history database. Empty
	// disables history recording.
	HistoryDB string `toml:"history-db"`
}

// DebugEnabled reports whether debug output is on, either from the
// config file or from the environment switch.
func (c Config) DebugEnabled() bool {
	return c.Debug || os.Getenv(DebugEnvVar) == "true"
}

// LoadConfig parses a cdshare.toml file from the given directory.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &c, nil
}

// LoadConfigOrDefault loads cdshare.toml from dir if present, and
// returns a zero config when the file does not exist.
func LoadConfigOrDefault(dir string) (*Config, error) {
	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadConfig(dir)
}
