package config

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ansel1/tally/identifier"
)

// DefaultConfigFile is read from the working directory when no -config is given.
const DefaultConfigFile = ".tally.yaml"

// Defaults.
const (
	DefaultLogLevel = log.WarnLevel
)

// Environment variables.
const (
	EnvSummaryReportOn = "TALLY_SUMMARY_REPORT_ON"
	EnvLogLevel        = "TALLY_LOG_LEVEL"
	EnvNoColor         = "NO_COLOR"
)

// Value sources, recorded for debugging.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// File is the YAML config file.
type File struct {
	SummaryReportOn string `yaml:"summary_report_on,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
	NoTTY           bool   `yaml:"notty"`
	NoColor         bool   `yaml:"no_color"`
}

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	ConfigPath      string
	SummaryReportOn string
	LogLevel        string
	NoTTY           bool

	// Flags to track if they were explicitly set by the user
	SummaryReportOnSet bool
	LogLevelSet        bool
	NoTTYSet           bool
}

// Config is the resolved configuration.
type Config struct {
	SummaryReportOn identifier.Mode
	LogLevel        log.Level
	NoTTY           bool
	NoColor         bool

	SummaryReportOnSource string
	LogLevelSource        string
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return &f, nil
}

// loadConfigFile loads flags.ConfigPath, or DefaultConfigFile if it exists.
func loadConfigFile(flags CliFlags) (*File, error) {
	if flags.ConfigPath != "" {
		return LoadFile(flags.ConfigPath)
	}
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrapf(err, "checking %s", DefaultConfigFile)
	}
	return LoadFile(DefaultConfigFile)
}

// Resolve merges defaults, the config file, the environment and flags.
func Resolve(flags CliFlags) (*Config, error) {
	file, err := loadConfigFile(flags)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SummaryReportOn:       identifier.DefaultMode,
		LogLevel:              DefaultLogLevel,
		NoTTY:                 file.NoTTY,
		NoColor:               file.NoColor,
		SummaryReportOnSource: SourceDefault,
		LogLevelSource:        SourceDefault,
	}

	mode, source := pick(flags.SummaryReportOn, flags.SummaryReportOnSet, EnvSummaryReportOn, file.SummaryReportOn)
	if source != SourceDefault {
		if cfg.SummaryReportOn, err = identifier.ParseMode(mode); err != nil {
			return nil, errors.Wrapf(err, "from %s", source)
		}
		cfg.SummaryReportOnSource = source
	}

	level, source := pick(flags.LogLevel, flags.LogLevelSet, EnvLogLevel, file.LogLevel)
	if source != SourceDefault {
		if cfg.LogLevel, err = log.ParseLevel(level); err != nil {
			return nil, errors.Wrapf(err, "log level from %s", source)
		}
		cfg.LogLevelSource = source
	}

	if flags.NoTTYSet {
		cfg.NoTTY = flags.NoTTY
	}
	if os.Getenv(EnvNoColor) != "" {
		cfg.NoColor = true
	}

	return cfg, nil
}

// pick returns the highest-priority value that is set and where it came from.
func pick(cliValue string, cliSet bool, envKey, fileValue string) (string, string) {
	if cliSet {
		return cliValue, SourceCLI
	}
	if v, ok := os.LookupEnv(envKey); ok && v != "" {
		return v, SourceEnv
	}
	if fileValue != "" {
		return fileValue, SourceFile
	}
	return "", SourceDefault
}
