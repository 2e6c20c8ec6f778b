package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/dltrack/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.dltrack")
		v.AddConfigPath("/etc/dltrack")
	}

	v.SetEnvPrefix("DLTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnv registers the scalar keys so AutomaticEnv can override them
// even when no config file mentions them
func bindEnv(v *viper.Viper) {
	keys := []string{
		"server.host", "server.port", "server.shutdown_timeout",
		"engine.base_url", "engine.command_timeout",
		"locator.command",
		"artifacts.refresh_url", "artifacts.refresh_timeout",
		"notification.enabled", "notification.sound", "notification.method",
		"store.database_path", "store.restore_on_start",
		"logging.level", "logging.format", "logging.output_path", "logging.logs_dir",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Store.DatabasePath = expandPath(config.Store.DatabasePath)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Engine.BaseURL == "" {
		return fmt.Errorf("engine base url not configured")
	}

	if config.Engine.CommandTimeout < 0 {
		return fmt.Errorf("engine command timeout cannot be negative")
	}

	if len(config.Artifacts.Extensions) == 0 {
		return fmt.Errorf("at least one artifact extension is required")
	}

	if config.Store.RestoreOnStart && config.Store.DatabasePath == "" {
		return fmt.Errorf("restore_on_start requires store.database_path")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
