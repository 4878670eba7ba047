// Package config loads and validates the CLI settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Log level constants
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoggerSettings configures the CLI logger.
type LoggerSettings struct {
	LogLevel   string `yaml:"logLevel" validate:"required,oneof=debug info warning error"`
	LogType    string `yaml:"logType" validate:"required,oneof=console file"`
	FilePath   string `yaml:"filePath" validate:"required_if=LogType file"`
	MaxSize    int    `yaml:"maxSizeMB" validate:"omitempty,min=1,max=100"`
	MaxBackups int    `yaml:"maxBackups" validate:"omitempty,min=1,max=10"`
	MaxAge     int    `yaml:"maxAgeDays" validate:"omitempty,min=1,max=365"`
}

// OutputSettings controls how command results are printed.
type OutputSettings struct {
	Format string `yaml:"format" validate:"required,oneof=text json"`
}

// Settings is the top-level configuration.
type Settings struct {
	KeyDir string         `yaml:"keyDir"`
	Logger LoggerSettings `yaml:"logger"`
	Output OutputSettings `yaml:"output"`
}

// Default returns settings that log warnings to the console and print text.
func Default() *Settings {
	return &Settings{
		Logger: LoggerSettings{
			LogLevel:   LogLevelWarning,
			LogType:    LogTypeConsole,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Output: OutputSettings{Format: FormatText},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses a config file. An empty path returns the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}
