// Package config loads ssi settings from TOML files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/naoina/toml"
)

const (
	// ProjectFile is looked up in the working directory.
	ProjectFile = ".ssi.toml"
	// UserDir is the per-user directory under $HOME.
	UserDir = ".ssi"
	// UserFile is the config file name inside UserDir.
	UserFile = "config.toml"
)

// Config holds the settings shared by the CLI and the REPL. Verbosity uses
// the usual numbering: 0 silent, 1 crit, 2 error, 3 warn, 4 info, 5 debug.
type Config struct {
	Pretty         bool
	Color          bool
	Verbosity      int
	CacheSize      int
	HistoryFile    string `toml:",omitempty"`
	PromptPrimary  string
	PromptContinue string
}

// Defaults are used for every field a config file leaves out.
var Defaults = Config{
	Pretty:         true,
	Color:          true,
	Verbosity:      3,
	CacheSize:      64,
	PromptPrimary:  ">> ",
	PromptContinue: ".. ",
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load decodes file into cfg. Fields missing from the file keep their
// current values.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Marshal encodes cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Locate picks the config file to use. Precedence: explicit file →
// project (.ssi.toml in projectDir) → user (~/.ssi/config.toml). It returns
// "" when there is nothing to load. An explicit file must exist.
func Locate(explicit, projectDir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	projectPath := filepath.Join(projectDir, ProjectFile)
	if fileExists(projectPath) {
		return projectPath, nil
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, UserDir, UserFile)
		if fileExists(userPath) {
			return userPath, nil
		}
	}
	return "", nil
}

// Resolve returns Defaults overlaid with the file chosen by Locate, and the
// path of that file.
func Resolve(explicit, projectDir string) (Config, string, error) {
	cfg := Defaults
	path, err := Locate(explicit, projectDir)
	if err != nil || path == "" {
		return cfg, "", err
	}
	if err := Load(path, &cfg); err != nil {
		return Defaults, path, err
	}
	return cfg, path, nil
}

// DefaultHistoryFile returns ~/.ssi/history, or "" when there is no home
// directory.
func DefaultHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, UserDir, "history")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
