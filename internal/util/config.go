package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	HomeEnv = "PMLANG_HOME"

	OutputText = "text"
	OutputJSON = "json"
	OutputTree = "tree"
)

type Configuration struct {
	Version   string `toml:"-" yaml:"-"`
	BuildDate string `toml:"-" yaml:"-"`
	Commit    string `toml:"-" yaml:"-"`

	Home          string `toml:"home" yaml:"home"`
	LogLevel      string `toml:"log_level" yaml:"log_level"`
	LogFile       string `toml:"log_file" yaml:"log_file"`
	Output        string `toml:"output" yaml:"output"`
	JournalDriver string `toml:"journal_driver" yaml:"journal_driver"`
	JournalDSN    string `toml:"journal_dsn" yaml:"journal_dsn"`
	HistoryFile   string `toml:"history_file" yaml:"history_file"`
}

// DefaultConfiguration returns the settings used when no file is given.
// The journal and REPL history live under $PMLANG_HOME, or ~/.pmlang.
func DefaultConfiguration() Configuration {
	home := os.Getenv(HomeEnv)
	if home == "" {
		if userHome, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(userHome, ".pmlang")
		} else {
			home = ".pmlang"
		}
	}
	cfg := Configuration{
		LogLevel:      "none",
		Output:        OutputText,
		JournalDriver: "sqlite3",
	}
	cfg.setHome(home)
	return cfg
}

// setHome points the journal and history at files under home.
func (c *Configuration) setHome(home string) {
	c.Home = home
	c.JournalDSN = filepath.Join(home, "journal.db")
	c.HistoryFile = filepath.Join(home, "history")
}

// LoadConfiguration reads a TOML or YAML file, chosen by extension, over
// the defaults. Fields missing from the file keep their default values,
// except that a home set in the file also moves the journal and history
// files the file does not name.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}

	path = os.ExpandEnv(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}

	var file Configuration
	defined := map[string]bool{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var keys map[string]any
		if err := yaml.Unmarshal(content, &keys); err != nil {
			return cfg, errors.Wrapf(err, "parsing yaml config %s", path)
		}
		if err := yaml.Unmarshal(content, &file); err != nil {
			return cfg, errors.Wrapf(err, "parsing yaml config %s", path)
		}
		for k := range keys {
			defined[k] = true
		}
	case ".toml", "":
		md, err := toml.Decode(string(content), &file)
		if err != nil {
			return cfg, errors.Wrapf(err, "parsing toml config %s", path)
		}
		for _, k := range md.Keys() {
			defined[k.String()] = true
		}
	default:
		return cfg, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	cfg.merge(file, defined)

	cfg.JournalDSN = os.ExpandEnv(cfg.JournalDSN)
	cfg.HistoryFile = os.ExpandEnv(cfg.HistoryFile)

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// merge copies the keys defined in a config file over c.
func (c *Configuration) merge(file Configuration, defined map[string]bool) {
	if defined["home"] {
		c.setHome(os.ExpandEnv(file.Home))
	}
	if defined["log_level"] {
		c.LogLevel = file.LogLevel
	}
	if defined["log_file"] {
		c.LogFile = file.LogFile
	}
	if defined["output"] {
		c.Output = file.Output
	}
	if defined["journal_driver"] {
		c.JournalDriver = file.JournalDriver
	}
	if defined["journal_dsn"] {
		c.JournalDSN = file.JournalDSN
	}
	if defined["history_file"] {
		c.HistoryFile = file.HistoryFile
	}
}

func (c Configuration) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputTree:
	default:
		return errors.Errorf("unknown output format %q", c.Output)
	}
	switch c.JournalDriver {
	case "", "sqlite3", "mysql", "postgres":
	default:
		return errors.Errorf("unknown journal driver %q", c.JournalDriver)
	}
	return nil
}
