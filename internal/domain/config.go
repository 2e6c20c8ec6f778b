package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Locator      LocatorConfig      `mapstructure:"locator"`
	Artifacts    ArtifactsConfig    `mapstructure:"artifacts"`
	Notification NotificationConfig `mapstructure:"notification"`
	Store        StoreConfig        `mapstructure:"store"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EngineConfig points at the external transfer engine's control endpoint
type EngineConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// LocatorConfig controls how a download's folder is revealed.
// An empty Command selects the platform default.
type LocatorConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// ArtifactsConfig describes which finished downloads count as artifacts
type ArtifactsConfig struct {
	Extensions     []string         `mapstructure:"extensions"`
	Sources        []ArtifactSource `mapstructure:"sources"`
	RefreshURL     string           `mapstructure:"refresh_url"`
	RefreshTimeout time.Duration    `mapstructure:"refresh_timeout"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// StoreConfig configures the explicit snapshot store
type StoreConfig struct {
	DatabasePath   string `mapstructure:"database_path"`
	RestoreOnStart bool   `mapstructure:"restore_on_start"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // category logs, empty disables them
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8765,
			ShutdownTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			BaseURL:        "http://localhost:8000/downloads",
			CommandTimeout: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Extensions:     []string{".pth"},
			RefreshTimeout: 15 * time.Second,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Store: StoreConfig{
			DatabasePath:   "$HOME/.dltrack/snapshot.db",
			RestoreOnStart: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
