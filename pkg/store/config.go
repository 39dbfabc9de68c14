package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tableflip.dev/akats/pkg/logging"
)

const (
	// DefaultServer is where the episode service listens by default.
	DefaultServer = "http://localhost:9090"
	// DefaultPath is the store base path before ~ expansion.
	DefaultPath = "~/.akats"
)

// Config resolves where state lives and which service to talk to.
type Config interface {
	BasePath() string
	ServerURL() string
	LogOptions() logging.Options
}

// LoadConfig reads .akats.yaml from $AKATS_CONFIG_PATH, the working
// directory or $HOME, then applies AKATS_* environment variables and any
// flags bound from fs (server, log-level, log-file). fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("path", DefaultPath)
	v.SetDefault("server", DefaultServer)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetConfigName(".akats") // .yaml is implicit
	v.SetEnvPrefix("AKATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("AKATS_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if fs != nil {
		for key, flag := range map[string]string{
			"server":    "server",
			"log.level": "log-level",
			"log.file":  "log-file",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	path, err := expand(v.GetString("path"))
	if err != nil {
		return nil, err
	}
	logFile, err := expand(v.GetString("log.file"))
	if err != nil {
		return nil, err
	}

	return &fileConfig{
		Path:      path,
		Server:    v.GetString("server"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogFile:   logFile,
	}, nil
}

// NewConfig builds a Config without consulting files or the environment.
func NewConfig(path, server string) Config {
	return &fileConfig{Path: path, Server: server}
}

type fileConfig struct {
	Path      string `json:"path"`
	Server    string `json:"server"`
	LogLevel  string `json:"logLevel,omitempty"`
	LogFormat string `json:"logFormat,omitempty"`
	LogFile   string `json:"logFile,omitempty"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

func (f *fileConfig) ServerURL() string {
	if f.Server == "" {
		return DefaultServer
	}
	return f.Server
}

func (f *fileConfig) LogOptions() logging.Options {
	return logging.Options{Level: f.LogLevel, Format: f.LogFormat, File: f.LogFile}
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}
