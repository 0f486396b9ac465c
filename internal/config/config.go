// ABOUTME: Layered configuration for the exporter: flags, environment, config file, defaults
// ABOUTME: Backed by viper with the cobra flag set bound as the highest-precedence source

// Package config loads and validates exporter settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/obra/git-export-unstaged/internal/textenc"
)

// Keys double as flag names and YAML keys.
const (
	KeyOutput    = "output"
	KeyEncoding  = "encoding"
	KeyRepoRoot  = "repo-root"
	KeyDryRun    = "dry-run"
	KeyStrict    = "strict"
	KeyDebug     = "debug"
	KeyLogFormat = "log-format"
	KeyConfig    = "config"
)

const (
	// DefaultOutput is written relative to the working directory unless repo-root is set.
	DefaultOutput = "unstaged.diff"

	// EnvPrefix namespaces environment overrides, e.g. GIT_EXPORT_UNSTAGED_OUTPUT.
	EnvPrefix = "GIT_EXPORT_UNSTAGED"

	configName = ".git-export-unstaged"
)

// ErrInvalid is wrapped by every validation Error.
var ErrInvalid = errors.New("invalid configuration")

// Error describes a rejected configuration value
type Error struct {
	Key   string
	Value interface{}
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error for %s = %v: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// Config holds the resolved settings for one run
type Config struct {
	Output    string
	Encoding  string
	RepoRoot  bool
	DryRun    bool
	Strict    bool
	Debug     bool
	LogFormat string

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// RegisterFlags declares every configurable flag on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyOutput, "o", DefaultOutput, "File to write the unstaged diff to")
	fs.String(KeyEncoding, textenc.DefaultEncoding, "Encoding of the diff bytes produced by git")
	fs.Bool(KeyRepoRoot, false, "Resolve a relative --output against the repository root")
	fs.Bool(KeyDryRun, false, "Preview what would be exported without writing the file")
	fs.Bool(KeyStrict, false, "Exit with status 1 when the export fails")
	fs.Bool(KeyDebug, false, "Enable detailed debug output")
	fs.String(KeyLogFormat, "console", "Debug log format: console or json")
	fs.String(KeyConfig, "", "Config file (default .git-export-unstaged.yaml in the working or home directory)")
}

// Load resolves settings from fs, the environment and an optional config file
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyEncoding, textenc.DefaultEncoding)
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Output:     v.GetString(KeyOutput),
		Encoding:   v.GetString(KeyEncoding),
		RepoRoot:   v.GetBool(KeyRepoRoot),
		DryRun:     v.GetBool(KeyDryRun),
		Strict:     v.GetBool(KeyStrict),
		Debug:      v.GetBool(KeyDebug),
		LogFormat:  v.GetString(KeyLogFormat),
		ConfigFile: v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	if explicit := v.GetString(KeyConfig); explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// Validate rejects settings the exporter cannot act on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return &Error{Key: KeyOutput, Value: c.Output, Err: errors.New("output path is required")}
	}

	if _, err := textenc.Lookup(c.Encoding); err != nil {
		return &Error{Key: KeyEncoding, Value: c.Encoding, Err: err}
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return &Error{Key: KeyLogFormat, Value: c.LogFormat, Err: errors.New("must be console or json")}
	}

	return nil
}
