package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// App is the optional application settings file shared by every command.
// Explicit flags always win over these values.
type App struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Output  OutputConfig  `mapstructure:"output"`
	Analyze AnalyzeConfig `mapstructure:"analyze"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	Level string `mapstructure:"level"`
	// File routes logs to a rotating JSON file when set.
	File string `mapstructure:"file"`
}

// OutputConfig sets where artifacts land when --out is not given.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// AnalyzeConfig holds the analyze command's model settings.
type AnalyzeConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// Validate checks every section and returns the first problem found.
func (a *App) Validate() error {
	if err := a.Logger.Validate(); err != nil {
		return err
	}
	if err := a.Output.Validate(); err != nil {
		return err
	}
	return a.Analyze.Validate()
}

func (l *LoggerConfig) Validate() error {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level %q", l.Level)
	}
	return nil
}

func (o *OutputConfig) Validate() error {
	if o.Dir == "" {
		return errors.New("output.dir: must not be empty")
	}
	return nil
}

func (a *AnalyzeConfig) Validate() error {
	if a.Model == "" {
		return errors.New("analyze.model: must not be empty")
	}
	if a.MaxTokens <= 0 {
		return errors.New("analyze.max_tokens: must be positive")
	}
	return nil
}

// LoadApp reads the application settings. Path may be empty, in which case
// defaults and POKERMETRICS_* environment variables apply.
func LoadApp(path string) (*App, error) {
	v := viper.New()
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
	v.SetDefault("output.dir", "out")
	v.SetDefault("analyze.model", "claude-haiku-4-5-20251001")
	v.SetDefault("analyze.max_tokens", 1024)
	v.SetEnvPrefix("POKERMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &app, nil
}
